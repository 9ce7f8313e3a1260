package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Style holds the CSS-like style tokens used to mark inserted text
type Style struct {
	Color  string // Fill, e.g. "rgba(255,215,0,0.35)"
	Border string // Outline, e.g. "1px solid rgba(255,215,0,0.7)"
}

// Color is an RGB colour with opacity
type Color struct {
	R, G, B uint8
	A       float64 // 0..1
}

// Hex renders the colour as #rrggbb, ignoring alpha
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Over composites c onto an opaque background
func (c Color) Over(bg Color) Color {
	mix := func(fg, bg uint8) uint8 {
		return uint8(float64(fg)*c.A + float64(bg)*(1-c.A) + 0.5)
	}
	return Color{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: 1}
}

// Border is a parsed CSS border shorthand
type Border struct {
	Width int
	Line  string // solid, dashed, dotted, double
	Color Color
}

// Fill parses the fill colour; ok is false when the token is empty or unrecognised
func (s Style) Fill() (Color, bool) {
	c, err := ParseColor(s.Color)
	return c, err == nil
}

// Outline parses the border; ok is false when there is no usable colour
func (s Style) Outline() (Border, bool) {
	b, err := ParseBorder(s.Border)
	return b, err == nil
}

// ParseColor understands #rgb, #rrggbb, rgb(r,g,b) and rgba(r,g,b,a)
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return Color{}, fmt.Errorf("unsupported color %q", s)
}

func parseHex(h string) (Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", h, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
}

func parseFunc(args string, want int) (Color, error) {
	parts := strings.Split(args, ",")
	if len(parts) != want {
		return Color{}, fmt.Errorf("expected %d color components, got %d", want, len(parts))
	}
	var rgb [3]uint8
	for i := range 3 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return Color{}, fmt.Errorf("invalid color component %q", parts[i])
		}
		rgb[i] = uint8(n)
	}
	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("invalid alpha %q", parts[3])
		}
		alpha = a
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

// ParseBorder reads a CSS border shorthand such as "1px solid rgba(255,215,0,0.7)".
// Width and line style are optional; the colour is required.
func ParseBorder(s string) (Border, error) {
	b := Border{Width: 1, Line: "solid"}
	rest := strings.TrimSpace(strings.ToLower(s))
	found := false
	for rest != "" {
		tok, tail := nextBorderToken(rest)
		rest = strings.TrimSpace(tail)
		switch {
		case strings.HasSuffix(tok, "px"):
			if n, err := strconv.Atoi(strings.TrimSuffix(tok, "px")); err == nil {
				b.Width = n
			}
		case tok == "solid" || tok == "dashed" || tok == "dotted" || tok == "double":
			b.Line = tok
		case tok == "none":
			return Border{}, fmt.Errorf("border disabled")
		default:
			c, err := ParseColor(tok)
			if err != nil {
				return Border{}, err
			}
			b.Color = c
			found = true
		}
	}
	if !found {
		return Border{}, fmt.Errorf("border %q has no color", s)
	}
	return b, nil
}

// nextBorderToken splits off one token, keeping rgb(...) groups intact
func nextBorderToken(s string) (string, string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ' ', '\t':
			if depth == 0 {
				return s[:i], s[i:]
			}
		}
	}
	return s, ""
}
