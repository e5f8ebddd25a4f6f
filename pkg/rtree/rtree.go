// Package rtree indexes point cloud samples in an R-Tree so that polygon
// classification only visits the points near each polygon
package rtree

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-pointclass/pkg/models"
)

const (
	// tolerance is the smallest half side of the rectangle stored for every
	// point and the smallest padding applied to every query box, so lookups
	// return a superset
	tolerance   = 1e-6
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialPoint wraps a point position to implement rtreego.Spatial interface
type spatialPoint struct {
	index int
	rect  *rtreego.Rect
}

func (sp *spatialPoint) Bounds() *rtreego.Rect {
	return sp.rect
}

// PointIndex is a thread-safe R-Tree over the positions of a point slice.
// It stores indexes into that slice, never the points themselves.
type PointIndex struct {
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewPointIndex creates an empty index
func NewPointIndex() *PointIndex {
	return &PointIndex{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// Build creates an index over points, preparing the rectangles in parallel
func Build(points []models.Point) *PointIndex {
	idx := NewPointIndex()
	idx.IndexPoints(points, 0)
	return idx
}

// padding returns tolerance, or a few ulps of the largest magnitude among vs
// when that is wider
func padding(vs ...float64) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, math.Abs(v))
	}
	return math.Max(tolerance, 4*(math.Nextafter(m, math.Inf(1))-m))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IndexPoints indexes points under positions offset, offset+1, ...
// Points with a NaN or infinite x or y are skipped: they lie in no box.
func (g *PointIndex) IndexPoints(points []models.Point, offset int) {
	if len(points) == 0 {
		return
	}

	numCPU := runtime.NumCPU()
	items := make([]*spatialPoint, len(points))
	var wg sync.WaitGroup

	// Calculate batch size for each CPU
	batchSize := (len(points) + numCPU - 1) / numCPU
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				x, y := points[j].X, points[j].Y
				if !finite(x) || !finite(y) {
					continue
				}
				p := rtreego.Point{x, y}
				items[j] = &spatialPoint{index: offset + j, rect: p.ToRect(padding(x, y))}
			}
		}(start, end)
	}
	wg.Wait()

	// Insert items into the tree (this part must be synchronized)
	g.mu.Lock()
	defer g.mu.Unlock()

	inserted := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		g.tree.Insert(item)
		inserted++
	}
	g.itemCount.Add(int64(inserted))
}

// Candidates returns, in ascending order, the positions of every indexed point
// whose x,y may lie inside box. Points on or near the box edges are included;
// callers apply their own exact test.
func (g *PointIndex) Candidates(box models.BoundingBox) ([]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if box.MaxX < box.MinX || box.MaxY < box.MinY {
		return nil, fmt.Errorf("invalid bounding box: %+v", box)
	}

	pad := padding(box.MinX, box.MinY, box.MaxX, box.MaxY)
	bottomLeft := rtreego.Point{box.MinX - pad, box.MinY - pad}
	rectSize := []float64{
		box.MaxX - box.MinX + 2*pad,
		box.MaxY - box.MinY + 2*pad,
	}

	bounds, err := rtreego.NewRect(bottomLeft, rectSize)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := g.tree.SearchIntersect(bounds)

	positions := make([]int, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialPoint)
		if !ok {
			continue
		}
		positions = append(positions, item.index)
	}
	sort.Ints(positions)

	return positions, nil
}

// Count returns the number of indexed points
func (g *PointIndex) Count() int64 {
	return g.itemCount.Load()
}

// Clear removes all points from the index
func (g *PointIndex) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	g.itemCount.Store(0)
}
