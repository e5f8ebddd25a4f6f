package legend

import (
	"fmt"
	"testing"

	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorical(t *testing.T) {
	groups := classify.Groups{
		{Key: "wall", Points: make([]models.Point, 3)},
		{Key: "tower", Points: make([]models.Point, 1)},
	}

	entries := Categorical(groups)
	require.Len(t, entries, 2)
	assert.Equal(t, "wall", entries[0].Key)
	assert.Equal(t, 3, entries[0].Points)
	assert.Equal(t, "#ebac23", entries[0].Hex())
	assert.Equal(t, Palette[1], entries[1].Color)
}

func TestCategoricalWrapsPalette(t *testing.T) {
	groups := make(classify.Groups, len(Palette)+2)
	for i := range groups {
		groups[i] = classify.Group{Key: fmt.Sprintf("g%d", i)}
	}

	entries := Categorical(groups)
	assert.Equal(t, entries[0].Color, entries[len(Palette)].Color)
	assert.Equal(t, entries[1].Color, entries[len(Palette)+1].Color)
}

func TestColorbarEnds(t *testing.T) {
	cb := NewColorbar(0, 15)
	stops := cb.Stops()
	require.Len(t, stops, 16)
	assert.Equal(t, 0.0, stops[0].Value)
	assert.Equal(t, 15.0, stops[15].Value)
	assert.Equal(t, 1.0, stops[1].Value)

	assert.Equal(t, stops[0].Color, cb.Color(-3))
	assert.Equal(t, stops[15].Color, cb.Color(100))
	assert.Equal(t, stops[15].Color, cb.Color(15))
	assert.Equal(t, stops[4].Color, cb.Color(4))
}

func TestColorbarInterpolates(t *testing.T) {
	cb := NewColorbar(0, 15)
	stops := cb.Stops()

	mid := cb.Color(2.5)
	want := stops[2].Color.BlendRgb(stops[3].Color, 0.5)
	assert.InDelta(t, want.R, mid.R, 1e-9)
	assert.InDelta(t, want.G, mid.G, 1e-9)
	assert.InDelta(t, want.B, mid.B, 1e-9)
}

func TestColorbarDegenerate(t *testing.T) {
	cb := NewColorbar(4, 4)
	assert.Equal(t, cb.Stops()[0].Color, cb.Color(4))
	assert.Equal(t, cb.Stops()[0].Color, cb.Color(9))
}

func TestColorbarSwapsRange(t *testing.T) {
	cb := NewColorbar(10, 0)
	assert.Equal(t, 0.0, cb.Min)
	assert.Equal(t, 10.0, cb.Max)
}

func TestLabels(t *testing.T) {
	cb := NewColorbar(0, 1)
	labels := cb.Labels(DefaultLabels)
	require.Len(t, labels, 11)
	assert.Equal(t, 0.0, labels[0])
	assert.InDelta(t, 0.5, labels[5], 1e-12)
	assert.Equal(t, 1.0, labels[10])

	assert.Equal(t, []float64{0}, cb.Labels(1))
}

func TestForScalars(t *testing.T) {
	s := classify.Scalars{
		Points: make([]models.Point, 2),
		Values: []float64{1, 3},
		Min:    1,
		Max:    3,
	}
	cb := ForScalars(s)
	colors := cb.Colors(s)
	require.Len(t, colors, 2)
	assert.Equal(t, cb.Stops()[0].Color, colors[0])
	assert.Equal(t, cb.Stops()[15].Color, colors[1])
}
