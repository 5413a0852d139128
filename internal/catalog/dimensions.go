package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimensions are a product's physical size in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height,omitempty"`
}

// FootprintSqIn is the floor area occupied, length × width.
func (d Dimensions) FootprintSqIn() float64 { return d.Length * d.Width }

// ParseDimensions reads "L x W" or "L x W x H". Separators may be x, X or ×,
// and a trailing unit marker (", in) is ignored.
func ParseDimensions(s string) (Dimensions, error) {
	s = strings.NewReplacer("×", "x", "X", "x").Replace(s)
	parts := strings.Split(s, "x")
	if len(parts) < 2 || len(parts) > 3 {
		return Dimensions{}, fmt.Errorf("parse dimensions %q: want LxW or LxWxH", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimSuffix(p, "in")
		p = strings.TrimSpace(strings.TrimRight(p, `"`))
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Dimensions{}, fmt.Errorf("parse dimensions %q: %w", s, err)
		}
		if v < 0 {
			return Dimensions{}, fmt.Errorf("parse dimensions %q: negative value", s)
		}
		vals[i] = v
	}
	d := Dimensions{Length: vals[0], Width: vals[1]}
	if len(vals) == 3 {
		d.Height = vals[2]
	}
	return d, nil
}
