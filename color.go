package bdfsurface

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned by ParseColor for malformed input
var ErrInvalidColor = errors.New("invalid color")

// ParseColor parses a color written as "#rrggbb", "rrggbb", "#rgb" or "r,g,b"
// with decimal components.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}

	if strings.Contains(s, ",") {
		return parseDecimalColor(s)
	}

	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		var c [3]uint8
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
			}
			c[i] = uint8(v * 0x11)
		}
		return RGB(c[0], c[1], c[2]), nil
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseDecimalColor(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("%w: %q needs three components", ErrInvalidColor, s)
	}
	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: component %q of %q", ErrInvalidColor, p, s)
		}
		c[i] = uint8(v)
	}
	return RGB(c[0], c[1], c[2]), nil
}
