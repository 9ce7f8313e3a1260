package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// LoadSettings reads a settings.json file.
// A missing file yields the defaults.
func LoadSettings(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes settings JSON. Both the flat VS Code form
// ("inlineChangeHighlighter.debounceMs": 300) and a nested object under the
// namespace are accepted; flat keys win.
func ParseSettings(data []byte) (Config, error) {
	if !gjson.ValidBytes(data) {
		return Default(), fmt.Errorf("settings are not valid JSON")
	}

	c := Default()
	lookup := func(key string) gjson.Result {
		if r := gjson.GetBytes(data, flatPath(key)); r.Exists() {
			return r
		}
		return gjson.GetBytes(data, Namespace+"."+key)
	}

	if r := lookup("enabled"); r.IsBool() {
		c.Enabled = r.Bool()
	}
	if r := lookup("color"); r.Type == gjson.String {
		c.Color = r.String()
	}
	if r := lookup("border"); r.Type == gjson.String {
		c.Border = r.String()
	}
	if r := lookup("debounceMs"); r.Type == gjson.Number {
		c.DebounceMs = int(r.Int())
	}
	if r := lookup("maxFileSizeKb"); r.Type == gjson.Number {
		c.MaxFileSizeKb = r.Float()
	}
	if r := lookup("languages"); r.IsArray() {
		var langs []string
		for _, item := range r.Array() {
			if item.Type == gjson.String {
				langs = append(langs, item.String())
			}
		}
		c.Languages = langs
	}
	if r := lookup("includeWhitespace"); r.IsBool() {
		c.IncludeWhitespace = r.Bool()
	}
	if r := lookup("showDeletions"); r.IsBool() {
		c.ShowDeletions = r.Bool()
	}
	return c, nil
}

// MarshalSettings renders c in the flat settings.json form
func MarshalSettings(c Config) ([]byte, error) {
	languages := c.Languages
	if languages == nil {
		languages = []string{}
	}
	fields := []struct {
		key   string
		value any
	}{
		{"enabled", c.Enabled},
		{"color", c.Color},
		{"border", c.Border},
		{"debounceMs", c.DebounceMs},
		{"maxFileSizeKb", c.MaxFileSizeKb},
		{"languages", languages},
		{"includeWhitespace", c.IncludeWhitespace},
		{"showDeletions", c.ShowDeletions},
	}

	out := []byte("{}")
	for _, f := range fields {
		var err error
		out, err = sjson.SetBytes(out, flatPath(f.key), f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", f.key, err)
		}
	}
	return pretty.Pretty(out), nil
}

// flatPath escapes the namespace dot so gjson/sjson treat the key as one field
func flatPath(key string) string {
	return strings.ReplaceAll(Namespace, ".", `\.`) + `\.` + key
}
