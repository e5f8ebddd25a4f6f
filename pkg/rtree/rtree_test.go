package rtree

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/kass/go-pointclass/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPointIndex(t *testing.T) {
	index := NewPointIndex()
	assert.NotNil(t, index)
	assert.NotNil(t, index.tree)
	assert.Equal(t, int64(0), index.Count())
}

func TestBuild(t *testing.T) {
	points := generateRandomPoints(1000)
	index := Build(points)
	assert.Equal(t, int64(1000), index.Count())
}

func TestCandidates(t *testing.T) {
	points := []models.Point{
		{X: 1, Y: 1},
		{X: 5, Y: 5},
		{X: 10, Y: 10}, // on the corner
		{X: 15, Y: 15},
		{X: 0, Y: 5}, // on the left edge
	}
	index := Build(points)

	box := models.BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	got, err := index.Candidates(box)
	require.NoError(t, err)

	// Edges are kept, the caller decides on them
	assert.Equal(t, []int{0, 1, 2, 4}, got)
}

func TestCandidatesDegenerateBox(t *testing.T) {
	points := []models.Point{{X: 2, Y: 0}, {X: 2, Y: 3}, {X: 4, Y: 1}}
	index := Build(points)

	// Zero-width box along x = 2
	got, err := index.Candidates(models.BoundingBox{MinX: 2, MinY: 0, MaxX: 2, MaxY: 5})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestCandidatesInvalidBox(t *testing.T) {
	index := Build([]models.Point{{X: 1, Y: 1}})
	_, err := index.Candidates(models.BoundingBox{MinX: 5, MinY: 0, MaxX: 1, MaxY: 1})
	assert.Error(t, err)
}

func TestBuildSkipsNonFinitePoints(t *testing.T) {
	points := generateRandomPoints(500)
	for i := 0; i < 200; i += 3 {
		points[i].X = math.NaN()
		points[i+1].Y = math.Inf(1)
		points[i+2].X = math.Inf(-1)
	}

	index := Build(points)
	assert.Equal(t, int64(500-201), index.Count())

	got, err := index.Candidates(models.BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100})
	require.NoError(t, err)
	for _, pos := range got {
		assert.GreaterOrEqual(t, pos, 201)
	}
}

func TestCandidatesLargeCoordinates(t *testing.T) {
	const base = 1e13
	points := []models.Point{
		{X: base, Y: base + 5},      // on the left edge
		{X: base + 10, Y: base + 5}, // on the right edge
		{X: base + 5, Y: base + 5},
		{X: base + 20, Y: base + 5},
	}
	index := Build(points)

	got, err := index.Candidates(models.BoundingBox{MinX: base, MinY: base, MaxX: base + 10, MaxY: base + 10})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestCandidatesSupersetOfLinearScan(t *testing.T) {
	points := generateRandomPoints(5000)
	index := Build(points)

	testCases := []models.BoundingBox{
		{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20},
		{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100},
		{MinX: 42.5, MinY: 13.25, MaxX: 43, MaxY: 80},
	}

	for i, box := range testCases {
		t.Run(fmt.Sprintf("box_%d", i), func(t *testing.T) {
			got, err := index.Candidates(box)
			require.NoError(t, err)

			seen := make(map[int]bool, len(got))
			for _, pos := range got {
				seen[pos] = true
			}
			for pos, p := range points {
				if box.StrictlyContains(p) {
					assert.True(t, seen[pos], "point %d missing from candidates", pos)
				}
			}
		})
	}
}

func TestConcurrentCandidates(t *testing.T) {
	index := Build(generateRandomPoints(10000))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			minX, minY := rand.Float64()*90, rand.Float64()*90
			_, err := index.Candidates(models.BoundingBox{MinX: minX, MinY: minY, MaxX: minX + 10, MaxY: minY + 10})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestClear(t *testing.T) {
	index := Build(generateRandomPoints(100))
	index.Clear()
	assert.Equal(t, int64(0), index.Count())

	got, err := index.Candidates(models.BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Helper function to generate random points
func generateRandomPoints(n int) []models.Point {
	points := make([]models.Point, n)
	for i := 0; i < n; i++ {
		points[i] = models.Point{
			X: rand.Float64() * 100,
			Y: rand.Float64() * 100,
			Z: rand.Float64() * 10,
		}
	}
	return points
}

func BenchmarkBuild(b *testing.B) {
	sizes := []int{1000, 10000, 100000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%d_points", size), func(b *testing.B) {
			points := generateRandomPoints(size)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = Build(points)
			}
		})
	}
}

func BenchmarkCandidates(b *testing.B) {
	index := Build(generateRandomPoints(100000))
	box := models.BoundingBox{MinX: 35, MinY: 35, MaxX: 40, MaxY: 40}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = index.Candidates(box)
	}
}
