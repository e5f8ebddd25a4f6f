// Package scene generates synthetic surveys: a grid of rooms bounded by
// walls, one structure per room and a random point cloud over the site.
package scene

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/kass/go-pointclass/pkg/attrs"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/paulmach/orb"
)

// Options controls the generated scene
type Options struct {
	Points        int
	Rooms         int // rooms per side
	RoomSize      float64
	WallThickness float64
	Seed          int64
	Workers       int
}

// DefaultOptions returns a 4x4 site of 10 unit rooms
func DefaultOptions() Options {
	return Options{
		Points:        100000,
		Rooms:         4,
		RoomSize:      10,
		WallThickness: 0.5,
		Seed:          1,
		Workers:       runtime.NumCPU(),
	}
}

// Scene is a generated survey
type Scene struct {
	Points     []models.Point
	Walls      []models.Polygon
	Structures []models.Polygon
	Extent     models.BoundingBox
}

var (
	wallTypes     = []string{"adobe", "stone", "brick", "mixed"}
	completeness  = []string{"complete", "partial", "collapsed"}
	designs       = []string{"bench", "hearth", "platform", "niche"}
	constructions = []string{"early", "middle", "late"}
)

// Generate builds a scene. The same options always give the same scene.
func Generate(opts Options) Scene {
	if opts.Rooms < 1 {
		opts.Rooms = 1
	}
	if opts.RoomSize <= 0 {
		opts.RoomSize = 10
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}

	r := rand.New(rand.NewSource(opts.Seed))
	side := float64(opts.Rooms) * opts.RoomSize
	half := opts.WallThickness / 2

	s := Scene{
		Extent: models.BoundingBox{MinX: -half, MinY: -half, MaxX: side + half, MaxY: side + half},
	}
	s.Walls = generateWalls(r, opts.Rooms, opts.RoomSize, opts.WallThickness)
	s.Structures = generateStructures(r, opts.Rooms, opts.RoomSize)
	s.Points = generatePoints(opts.Points, s.Extent, opts.Seed, opts.Workers)
	return s
}

// Layers returns the polygon sources keyed the way attrs.DefaultTable
// expects them
func (s Scene) Layers() map[string][]models.Polygon {
	return map[string][]models.Polygon{
		attrs.SourceWalls:      s.Walls,
		attrs.SourceStructures: s.Structures,
	}
}

func rect(minX, minY, maxX, maxY float64) orb.Ring {
	return orb.Ring{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}
}

func generateWalls(r *rand.Rand, rooms int, size, thickness float64) []models.Polygon {
	side := float64(rooms) * size
	half := thickness / 2

	walls := make([]models.Polygon, 0, 2*(rooms+1))
	for i := 0; i <= rooms; i++ {
		at := float64(i) * size
		walls = append(walls,
			wall(r, fmt.Sprintf("wall_h_%d", i), rect(-half, at-half, side+half, at+half), thickness),
			wall(r, fmt.Sprintf("wall_v_%d", i), rect(at-half, -half, at+half, side+half), thickness),
		)
	}
	return walls
}

func wall(r *rand.Rand, id string, ring orb.Ring, thickness float64) models.Polygon {
	original := 2 + r.Float64()*2
	return models.Polygon{
		ID:    id,
		Rings: []orb.Ring{ring},
		Attributes: map[string]models.Attribute{
			"clase_rev":  models.StringAttr(wallTypes[r.Intn(len(wallTypes))]),
			"preserva_1": models.StringAttr(completeness[r.Intn(len(completeness))]),
			"grosor":     models.NumberAttr(thickness * (0.8 + 0.4*r.Float64())),
			"alt_max":    models.NumberAttr(original),
			"alt_cons":   models.NumberAttr(original * r.Float64()),
		},
	}
}

// generateStructures places one square per room. Attributes are text, as
// they come out of a dBase table.
func generateStructures(r *rand.Rand, rooms int, size float64) []models.Polygon {
	structures := make([]models.Polygon, 0, rooms*rooms)
	for i := 0; i < rooms; i++ {
		for j := 0; j < rooms; j++ {
			cx := (float64(i) + 0.5) * size
			cy := (float64(j) + 0.5) * size
			q := size / 8

			heights := [3]string{}
			for k := range heights {
				// some surveys leave heights blank
				if r.Intn(4) == 0 {
					continue
				}
				heights[k] = fmt.Sprintf("%.2f", r.Float64()*1.5)
			}

			structures = append(structures, models.Polygon{
				ID:    fmt.Sprintf("structure_%d_%d", i, j),
				Rings: []orb.Ring{rect(cx-q, cy-q, cx+q, cy+q)},
				Attributes: map[string]models.Attribute{
					"design_co1": models.StringAttr(designs[r.Intn(len(designs))]),
					"preserva_1": models.StringAttr(completeness[r.Intn(len(completeness))]),
					"temp_con_2": models.StringAttr(constructions[r.Intn(len(constructions))]),
					"grosor_1":   models.StringAttr(fmt.Sprintf("%.2f", 0.2+r.Float64()*0.3)),
					"alt_muro_1": models.StringAttr(heights[0]),
					"altura_has": models.StringAttr(heights[1]),
					"altura_h_1": models.StringAttr(heights[2]),
				},
			})
		}
	}
	return structures
}

// generatePoints fills the extent uniformly. Each worker owns a fixed range
// and its own seeded generator.
func generatePoints(n int, extent models.BoundingBox, seed int64, workers int) []models.Point {
	points := make([]models.Point, n)
	if n == 0 {
		return points
	}

	perWorker := n / workers
	remainder := n % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		size := perWorker
		if w < remainder {
			size++
		}
		end := start + size

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(w) + 1))

			for i := start; i < end; i++ {
				points[i] = models.Point{
					X: extent.MinX + r.Float64()*(extent.MaxX-extent.MinX),
					Y: extent.MinY + r.Float64()*(extent.MaxY-extent.MinY),
					Z: r.Float64() * 3,
					Color: &models.RGB{
						R: uint16(r.Intn(1 << 16)),
						G: uint16(r.Intn(1 << 16)),
						B: uint16(r.Intn(1 << 16)),
					},
				}
			}
		}(w, start, end)
		start = end
	}

	wg.Wait()
	return points
}
