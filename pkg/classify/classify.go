// Package classify assigns point cloud samples to the labeled polygons that
// contain them, either by a fast bounding-box test or by exact polygon
// containment evaluated on a pool of goroutines.
package classify

import (
	"context"
	"fmt"
	"runtime"

	"github.com/kass/go-pointclass/pkg/models"
	"github.com/kass/go-pointclass/pkg/rtree"
	"golang.org/x/sync/errgroup"
)

// Method selects the per-polygon inclusion test
type Method int

const (
	// BoundingBox keeps points strictly inside the polygon's bounding box.
	// Points on a box edge are excluded.
	BoundingBox Method = iota
	// ExactContainment keeps points inside the polygon rings (boundary included)
	ExactContainment
)

func (m Method) String() string {
	switch m {
	case BoundingBox:
		return "bbox"
	case ExactContainment:
		return "exact"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts the names printed by Method.String
func ParseMethod(s string) (Method, error) {
	switch s {
	case "bbox", "boundingbox", "box":
		return BoundingBox, nil
	case "exact", "boundary", "polygon":
		return ExactContainment, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Entry is the subset of points that fell inside one polygon
type Entry struct {
	// Index is the polygon's position in the input slice
	Index   int
	Polygon models.Polygon
	Points  []models.Point
}

// Result is an all-or-nothing classification. Entries follow the input polygon
// order and polygons that matched no point are absent.
type Result struct {
	Method  Method
	Entries []Entry
}

// Len returns the number of non-empty polygons
func (r Result) Len() int {
	return len(r.Entries)
}

// PointCount returns the total number of (polygon, point) assignments
func (r Result) PointCount() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Points)
	}
	return n
}

type containsFunc func(pg models.Polygon, box models.BoundingBox, p models.Point) bool

// Classifier holds the execution settings of Classify. The zero value is not
// usable, use New.
type Classifier struct {
	workers  int
	useIndex bool
	contains containsFunc // replaced in tests
}

// Option configures a Classifier
type Option func(*Classifier)

// WithWorkers sets the size of the exact-containment worker pool. Values
// below 1 select runtime.NumCPU(); 1 runs serially.
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

// WithIndex toggles the R-Tree candidate lookup. When disabled every polygon
// scans every point.
func WithIndex(enabled bool) Option {
	return func(c *Classifier) {
		c.useIndex = enabled
	}
}

// New creates a Classifier with one worker per CPU and the index enabled
func New(opts ...Option) *Classifier {
	c := &Classifier{
		workers:  runtime.NumCPU(),
		useIndex: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workers returns the configured pool size
func (c *Classifier) Workers() int {
	return c.workers
}

// Classify runs the default Classifier
func Classify(points []models.Point, polygons []models.Polygon, method Method) (Result, error) {
	return New().Classify(points, polygons, method)
}

// Classify partitions points into per-polygon subsets. All polygons are
// validated first; a malformed one rejects the whole call with an error
// matching ErrInvalidGeometry. The first failing polygon evaluation is
// returned as a *WorkerError and no partial result is produced.
func (c *Classifier) Classify(points []models.Point, polygons []models.Polygon, method Method) (Result, error) {
	var test containsFunc
	switch method {
	case BoundingBox:
		test = inBox
	case ExactContainment:
		test = inPolygon
	default:
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
	if c.contains != nil {
		test = c.contains
	}

	if err := Validate(polygons); err != nil {
		return Result{}, err
	}

	res := Result{Method: method, Entries: []Entry{}}
	if len(points) == 0 || len(polygons) == 0 {
		return res, nil
	}

	var index *rtree.PointIndex
	if c.useIndex {
		index = rtree.Build(points)
	}

	subsets := make([][]models.Point, len(polygons))
	eval := func(i int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &WorkerError{Index: i, ID: polygons[i].ID, Err: fmt.Errorf("panic: %v", r)}
			}
		}()

		pg := polygons[i]
		box := models.BoxOf(pg.Bound())

		if index == nil {
			subsets[i] = filter(points, nil, pg, box, test)
			return nil
		}

		candidates, err := index.Candidates(box)
		if err != nil {
			return &WorkerError{Index: i, ID: pg.ID, Err: err}
		}
		subsets[i] = filter(points, candidates, pg, box, test)
		return nil
	}

	// Only exact containment is worth a pool, bbox tests are O(1) per point
	workers := c.workers
	if method == BoundingBox {
		workers = 1
	}

	if err := run(len(polygons), workers, eval); err != nil {
		return Result{}, err
	}

	for i, subset := range subsets {
		if len(subset) == 0 {
			continue
		}
		res.Entries = append(res.Entries, Entry{Index: i, Polygon: polygons[i], Points: subset})
	}

	return res, nil
}

// run evaluates jobs 0..n-1 on at most workers goroutines and blocks until
// all of them have returned. After the first failure the jobs that have not
// started yet are skipped.
func run(n, workers int, eval func(i int) error) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := eval(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return eval(i)
		})
	}

	return g.Wait()
}

// filter copies the points that pass test. When candidates is nil all points
// are visited, otherwise only the listed positions (ascending).
func filter(points []models.Point, candidates []int, pg models.Polygon, box models.BoundingBox, test containsFunc) []models.Point {
	var out []models.Point
	if candidates == nil {
		for _, p := range points {
			if test(pg, box, p) {
				out = append(out, p)
			}
		}
		return out
	}

	for _, pos := range candidates {
		if p := points[pos]; test(pg, box, p) {
			out = append(out, p)
		}
	}
	return out
}

func inBox(_ models.Polygon, box models.BoundingBox, p models.Point) bool {
	return box.StrictlyContains(p)
}

func inPolygon(pg models.Polygon, box models.BoundingBox, p models.Point) bool {
	// Cheap reject before ray casting, inclusive to keep boundary points.
	// Written as a negation so NaN coordinates are rejected too.
	if !(p.X >= box.MinX && p.X <= box.MaxX && p.Y >= box.MinY && p.Y <= box.MaxY) {
		return false
	}
	return Contains(pg, p)
}
