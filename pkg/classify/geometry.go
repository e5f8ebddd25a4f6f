package classify

import (
	"math"

	"github.com/kass/go-pointclass/pkg/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Validate checks every polygon and returns the first malformed one as a
// *GeometryError. A ring needs at least 3 distinct vertices, so a closing
// vertex equal to the first one is not counted.
func Validate(polygons []models.Polygon) error {
	for i := range polygons {
		if err := validatePolygon(i, &polygons[i]); err != nil {
			return err
		}
	}
	return nil
}

func validatePolygon(i int, pg *models.Polygon) error {
	if len(pg.Rings) == 0 {
		return &GeometryError{Index: i, ID: pg.ID, Ring: -1, Reason: "polygon has no rings"}
	}
	for r, ring := range pg.Rings {
		if n := vertexCount(ring); n < 3 {
			return &GeometryError{Index: i, ID: pg.ID, Ring: r, Reason: "ring has fewer than 3 vertices"}
		}
		for _, v := range ring {
			if !finite(v[0]) || !finite(v[1]) {
				return &GeometryError{Index: i, ID: pg.ID, Ring: r, Reason: "ring has a non-finite vertex"}
			}
		}
	}
	return nil
}

// vertexCount returns the number of distinct vertices of ring
func vertexCount(ring orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(ring))
	for _, v := range ring {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Contains applies the exact containment rule. A point on the boundary of
// any ring is inside, including an edge shared by two rings. Otherwise each
// ring is tested by ray casting and the point is inside when an odd number
// of rings contain it.
func Contains(pg models.Polygon, p models.Point) bool {
	pt := p.XY()
	inside := false
	for _, ring := range pg.Rings {
		if onBoundary(ring, pt) {
			return true
		}
		if planar.RingContains(ring, pt) {
			inside = !inside
		}
	}
	return inside
}

// onBoundary reports whether p lies on an edge of ring, the closing edge
// included
func onBoundary(ring orb.Ring, p orb.Point) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		if onSegment(ring[i], ring[(i+1)%n], p) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	if p[0] < math.Min(a[0], b[0]) || p[0] > math.Max(a[0], b[0]) ||
		p[1] < math.Min(a[1], b[1]) || p[1] > math.Max(a[1], b[1]) {
		return false
	}
	return (b[0]-a[0])*(p[1]-a[1]) == (b[1]-a[1])*(p[0]-a[0])
}
