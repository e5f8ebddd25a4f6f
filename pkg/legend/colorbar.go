package legend

import (
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultLabels is the number of colorbar ticks
const DefaultLabels = 11

// viridis stops, evenly spaced from low to high
var viridis = []colorful.Color{
	{R: 0.267004, G: 0.004874, B: 0.329415},
	{R: 0.282656, G: 0.100196, B: 0.42216},
	{R: 0.277134, G: 0.185228, B: 0.489898},
	{R: 0.253935, G: 0.265254, B: 0.529983},
	{R: 0.221989, G: 0.339161, B: 0.548752},
	{R: 0.190631, G: 0.407061, B: 0.556089},
	{R: 0.163625, G: 0.471133, B: 0.558148},
	{R: 0.139147, G: 0.533812, B: 0.555298},
	{R: 0.120565, G: 0.596422, B: 0.543611},
	{R: 0.134692, G: 0.658636, B: 0.517649},
	{R: 0.20803, G: 0.718701, B: 0.472873},
	{R: 0.327796, G: 0.77398, B: 0.40664},
	{R: 0.477504, G: 0.821444, B: 0.318195},
	{R: 0.647257, G: 0.8584, B: 0.209861},
	{R: 0.82494, G: 0.88472, B: 0.106217},
	{R: 0.993248, G: 0.906157, B: 0.143936},
}

// Stop is a value pinned to a color
type Stop struct {
	Value float64
	Color colorful.Color
}

// Colorbar maps a numeric range onto the viridis ramp
type Colorbar struct {
	Min   float64
	Max   float64
	stops []Stop
}

// NewColorbar spreads the ramp over [min, max]. Arguments in the wrong
// order are swapped.
func NewColorbar(min, max float64) *Colorbar {
	if min > max {
		min, max = max, min
	}
	cb := &Colorbar{Min: min, Max: max, stops: make([]Stop, len(viridis))}
	last := float64(len(viridis) - 1)
	for i, c := range viridis {
		cb.stops[i] = Stop{Value: min + (max-min)*float64(i)/last, Color: c}
	}
	return cb
}

// ForScalars sizes a colorbar to the range of s
func ForScalars(s classify.Scalars) *Colorbar {
	return NewColorbar(s.Min, s.Max)
}

// Stops returns the ramp stops in increasing value order
func (cb *Colorbar) Stops() []Stop {
	return append([]Stop(nil), cb.stops...)
}

// Color interpolates between the two surrounding stops. Values outside the
// range are clamped; a degenerate range maps everything to the first stop.
func (cb *Colorbar) Color(v float64) colorful.Color {
	if cb.Max == cb.Min || v <= cb.Min {
		return cb.stops[0].Color
	}
	if v >= cb.Max {
		return cb.stops[len(cb.stops)-1].Color
	}

	pos := (v - cb.Min) * float64(len(cb.stops)-1) / (cb.Max - cb.Min)
	i := int(pos)
	if i >= len(cb.stops)-1 {
		return cb.stops[len(cb.stops)-1].Color
	}
	return cb.stops[i].Color.BlendRgb(cb.stops[i+1].Color, pos-float64(i))
}

// Colors maps every value of s
func (cb *Colorbar) Colors(s classify.Scalars) []colorful.Color {
	out := make([]colorful.Color, len(s.Values))
	for i, v := range s.Values {
		out[i] = cb.Color(v)
	}
	return out
}

// Labels returns n evenly spaced tick values from Min to Max. n below 2
// returns just Min.
func (cb *Colorbar) Labels(n int) []float64 {
	if n < 2 {
		return []float64{cb.Min}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = cb.Min + (cb.Max-cb.Min)*float64(i)/float64(n-1)
	}
	return out
}
