package config

import (
	"math"
	"slices"
	"strings"
	"time"
)

// Namespace prefixes every setting key
const Namespace = "inlineChangeHighlighter"

// Defaults
const (
	DefaultColor             = "rgba(255,215,0,0.35)"
	DefaultBorder            = "1px solid rgba(255,215,0,0.7)"
	DefaultDebounceMs        = 200
	DefaultMaxFileSizeKb     = 1024
	DefaultIncludeWhitespace = true
)

// Config is one snapshot of the highlighter settings.
// Values are used as read; nothing is range-checked.
type Config struct {
	Enabled           bool
	Color             string
	Border            string
	DebounceMs        int
	MaxFileSizeKb     float64
	Languages         []string // Empty allows every language
	IncludeWhitespace bool
	ShowDeletions     bool
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Enabled:           true,
		Color:             DefaultColor,
		Border:            DefaultBorder,
		DebounceMs:        DefaultDebounceMs,
		MaxFileSizeKb:     DefaultMaxFileSizeKb,
		IncludeWhitespace: DefaultIncludeWhitespace,
	}
}

// Debounce returns the coalescing window
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// AllowsLanguage reports whether documents of languageID may be processed
func (c Config) AllowsLanguage(languageID string) bool {
	if len(c.Languages) == 0 {
		return true
	}
	return slices.Contains(c.Languages, languageID)
}

// WithinSizeLimit reports whether a document of n bytes is small enough.
// A document exactly at the limit is allowed.
func (c Config) WithinSizeLimit(n int) bool {
	return float64(n)/1024 <= c.MaxFileSizeKb
}

// Style returns the rendering style tokens
func (c Config) Style() Style {
	return Style{Color: c.Color, Border: c.Border}
}

// Source supplies a fresh snapshot on every call
type Source interface {
	Config() Config
}

// SourceFunc adapts a function to Source
type SourceFunc func() Config

// Config implements Source
func (f SourceFunc) Config() Config { return f() }

// Static always returns the same snapshot
type Static Config

// Config implements Source
func (s Static) Config() Config { return Config(s) }

// FromMap decodes settings from a key/value table such as a Lua table sent over msgpack.
// Keys may be camelCase, snake_case or prefixed with the namespace.
// Values of the wrong type leave the default in place.
func FromMap(m map[string]any) Config {
	c := Default()
	for k, v := range m {
		switch normalizeKey(k) {
		case "enabled":
			if b, ok := v.(bool); ok {
				c.Enabled = b
			}
		case "color":
			if s, ok := v.(string); ok {
				c.Color = s
			}
		case "border":
			if s, ok := v.(string); ok {
				c.Border = s
			}
		case "debouncems":
			if n, ok := toFloat(v); ok {
				c.DebounceMs = int(math.Round(n))
			}
		case "maxfilesizekb":
			if n, ok := toFloat(v); ok {
				c.MaxFileSizeKb = n
			}
		case "languages":
			if langs, ok := toStrings(v); ok {
				c.Languages = langs
			}
		case "includewhitespace":
			if b, ok := v.(bool); ok {
				c.IncludeWhitespace = b
			}
		case "showdeletions":
			if b, ok := v.(bool); ok {
				c.ShowDeletions = b
			}
		}
	}
	return c
}

// normalizeKey folds "inlineChangeHighlighter.debounceMs" and "debounce_ms" to "debouncems"
func normalizeKey(k string) string {
	k = strings.TrimPrefix(k, Namespace+".")
	k = strings.ReplaceAll(k, "_", "")
	return strings.ToLower(k)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case map[string]any:
		// An empty Lua table arrives as an empty map
		if len(list) == 0 {
			return nil, true
		}
	}
	return nil, false
}
