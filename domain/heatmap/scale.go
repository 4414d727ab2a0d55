// Package heatmap builds the hierarchically split, clustered heatmap
// layout: transposed cell matrix, treatment column groups with clustered
// ordering, method+organ row groups, display labels and the diverging
// color scale.
package heatmap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale anchors of the diverging ramp, in standardized units.
const (
	ScaleMin = -2.0
	ScaleMax = 2.0
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses a "#RRGGBB" color.
func ParseHex(s string) (RGB, error) {
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return RGB{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// Scale maps standardized values onto a three-point diverging ramp
// anchored at -2 / 0 / +2. Values beyond the anchors clamp to them.
type Scale struct {
	Low  RGB
	Mid  RGB
	High RGB
}

// NewScale builds a scale from three "#RRGGBB" anchors.
func NewScale(low, mid, high string) (Scale, error) {
	l, err := ParseHex(low)
	if err != nil {
		return Scale{}, err
	}
	m, err := ParseHex(mid)
	if err != nil {
		return Scale{}, err
	}
	h, err := ParseHex(high)
	if err != nil {
		return Scale{}, err
	}
	return Scale{Low: l, Mid: m, High: h}, nil
}

// Color maps a standardized value to its cell color. Non-finite values
// render as the midpoint.
func (s Scale) Color(v float64) RGB {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s.Mid
	}
	if v <= ScaleMin {
		return s.Low
	}
	if v >= ScaleMax {
		return s.High
	}
	if v < 0 {
		return lerp(s.Low, s.Mid, (v-ScaleMin)/(0-ScaleMin))
	}
	return lerp(s.Mid, s.High, v/ScaleMax)
}

func lerp(a, b RGB, t float64) RGB {
	return RGB{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
