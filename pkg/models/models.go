package models

import (
	"math"

	"github.com/paulmach/orb"
)

// RGB is a per-point color as stored in LAS files (16 bits per channel)
type RGB struct {
	R uint16 `json:"r"`
	G uint16 `json:"g"`
	B uint16 `json:"b"`
}

// Point represents one sample of a point cloud
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Color *RGB    `json:"color,omitempty"`
}

// XY returns the planar part of the point
func (p Point) XY() orb.Point {
	return orb.Point{p.X, p.Y}
}

// AttributeKind tells how an attribute value is stored
type AttributeKind int

const (
	// Null marks a missing or non-coercible value
	Null AttributeKind = iota
	String
	Number
)

// Attribute is a single polygon attribute value
type Attribute struct {
	Kind AttributeKind `json:"kind"`
	Str  string        `json:"str,omitempty"`
	Num  float64       `json:"num,omitempty"`
}

// StringAttr builds a categorical attribute
func StringAttr(s string) Attribute {
	return Attribute{Kind: String, Str: s}
}

// NumberAttr builds a numeric attribute. NaN and infinities become Null.
func NumberAttr(v float64) Attribute {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Attribute{}
	}
	return Attribute{Kind: Number, Num: v}
}

// IsNull reports whether the value is missing
func (a Attribute) IsNull() bool {
	return a.Kind == Null
}

// Polygon is a labeled boundary made of one or more exterior rings.
// More than one ring makes it a multi-polygon that is classified as one unit.
type Polygon struct {
	ID         string               `json:"id"`
	Rings      []orb.Ring           `json:"rings"`
	Attributes map[string]Attribute `json:"attributes,omitempty"`
}

// Attr returns the named attribute, Null if absent
func (p Polygon) Attr(field string) Attribute {
	if p.Attributes == nil {
		return Attribute{}
	}
	return p.Attributes[field]
}

// Bound returns the union of the bounds of all rings
func (p Polygon) Bound() orb.Bound {
	if len(p.Rings) == 0 {
		return orb.Bound{}
	}
	b := p.Rings[0].Bound()
	for _, r := range p.Rings[1:] {
		b = b.Union(r.Bound())
	}
	return b
}

// BoundingBox represents an axis-aligned rectangle
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// BoxOf converts an orb bound
func BoxOf(b orb.Bound) BoundingBox {
	return BoundingBox{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

// StrictlyContains reports whether p lies inside the box and not on its edges
func (b BoundingBox) StrictlyContains(p Point) bool {
	return b.MinX < p.X && p.X < b.MaxX && b.MinY < p.Y && p.Y < b.MaxY
}
