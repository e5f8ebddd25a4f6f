package models

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestNumberAttr(t *testing.T) {
	assert.Equal(t, Attribute{Kind: Number, Num: 1.5}, NumberAttr(1.5))
	assert.True(t, NumberAttr(math.NaN()).IsNull())
	assert.True(t, NumberAttr(math.Inf(-1)).IsNull())
	assert.False(t, StringAttr("").IsNull())
}

func TestPolygonBound(t *testing.T) {
	pg := Polygon{Rings: []orb.Ring{
		{{0, 0}, {2, 0}, {2, 2}, {0, 0}},
		{{5, -1}, {6, -1}, {6, 3}, {5, -1}},
	}}
	assert.Equal(t, BoundingBox{MinX: 0, MinY: -1, MaxX: 6, MaxY: 3}, BoxOf(pg.Bound()))
	assert.True(t, pg.Attr("missing").IsNull())
}

func TestStrictlyContains(t *testing.T) {
	box := BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{X: 5, Y: 5}, true},
		{"corner", Point{X: 0, Y: 0}, false},
		{"edge", Point{X: 10, Y: 5}, false},
		{"outside", Point{X: 15, Y: 15}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.StrictlyContains(tt.p))
		})
	}
}
