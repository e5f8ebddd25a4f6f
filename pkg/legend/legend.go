// Package legend builds the color model consumed by renderers: one legend
// entry per categorical group and a viridis colorbar for numeric scalars.
package legend

import (
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/lucasb-eyer/go-colorful"
)

// rgb8 converts 0-255 channels
func rgb8(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Palette is the categorical color cycle
var Palette = []colorful.Color{
	rgb8(235, 172, 35),
	rgb8(184, 0, 88),
	rgb8(0, 140, 249),
	rgb8(0, 110, 0),
	rgb8(0, 187, 173),
	rgb8(209, 99, 230),
	rgb8(89, 84, 214),
	rgb8(178, 69, 2),
	rgb8(255, 146, 135),
	rgb8(0, 198, 248),
	rgb8(135, 133, 0),
	rgb8(0, 167, 108),
	rgb8(189, 189, 189),
	rgb8(251, 73, 176),
}

// Entry is one legend line
type Entry struct {
	Key    string
	Color  colorful.Color
	Points int
}

// Hex returns the entry color as #rrggbb
func (e Entry) Hex() string {
	return e.Color.Hex()
}

// Categorical assigns palette colors to groups in order, wrapping around
// when there are more groups than colors
func Categorical(groups classify.Groups) []Entry {
	entries := make([]Entry, len(groups))
	for i, g := range groups {
		entries[i] = Entry{
			Key:    g.Key,
			Color:  Palette[i%len(Palette)],
			Points: len(g.Points),
		}
	}
	return entries
}
