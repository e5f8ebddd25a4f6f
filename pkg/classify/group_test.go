package classify

import (
	"path/filepath"
	"testing"

	"github.com/kass/go-pointclass/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrs(kind string, thickness float64) map[string]models.Attribute {
	return map[string]models.Attribute{
		"kind":      models.StringAttr(kind),
		"thickness": models.NumberAttr(thickness),
	}
}

var samplePoints = []models.Point{
	{X: 1, Y: 1}, {X: 2, Y: 2}, // a
	{X: 11, Y: 1},                // b
	{X: 21, Y: 1}, {X: 22, Y: 2}, // c
}

func sampleResult(t *testing.T) Result {
	t.Helper()
	points := samplePoints
	polygons := []models.Polygon{
		square("a", 0, 0, 5, attrs("wall", 1.5)),
		square("b", 10, 0, 5, attrs("tower", 3)),
		square("c", 20, 0, 5, attrs("wall", 0.5)),
		square("d", 40, 0, 5, attrs("floor", 9)), // empty
	}
	res, err := Classify(points, polygons, ExactContainment)
	require.NoError(t, err)
	require.Equal(t, 3, res.Len())
	return res
}

func TestGroupByAttribute(t *testing.T) {
	res := sampleResult(t)

	groups := GroupByAttribute(res, "kind")
	assert.Equal(t, []string{"wall", "tower"}, groups.Keys())

	wall, ok := groups.Get("wall")
	require.True(t, ok)
	assert.Equal(t, 2, wall.Polygons)
	assert.Len(t, wall.Points, len(res.Entries[0].Points)+len(res.Entries[2].Points))
	// Concatenation order follows the result order
	assert.Equal(t, []models.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 21, Y: 1}, {X: 22, Y: 2}}, wall.Points)

	_, ok = groups.Get("floor")
	assert.False(t, ok, "empty polygons never reach grouping")

	m := groups.Map()
	assert.Len(t, m["tower"], 1)
}

func TestGroupByAttributeSkipsNull(t *testing.T) {
	res := sampleResult(t)
	res.Entries[1].Polygon.Attributes = nil

	groups := GroupByAttribute(res, "kind")
	assert.Equal(t, []string{"wall"}, groups.Keys())

	assert.Empty(t, GroupByAttribute(res, "missing"))
}

func TestGroupByNumericAttribute(t *testing.T) {
	res := sampleResult(t)
	groups := GroupByAttribute(res, "thickness")
	assert.Equal(t, []string{"1.5", "3", "0.5"}, groups.Keys())
}

func TestMergeGroups(t *testing.T) {
	walls := Groups{
		{Key: "complete", Points: []models.Point{{X: 1}}, Polygons: 1},
		{Key: "partial", Points: []models.Point{{X: 2}}, Polygons: 1},
	}
	structures := Groups{
		{Key: "partial", Points: []models.Point{{X: 3}, {X: 4}}, Polygons: 2},
		{Key: "ruined", Points: []models.Point{{X: 5}}, Polygons: 1},
	}

	merged := MergeGroups(walls, structures)
	assert.Equal(t, []string{"complete", "partial", "ruined"}, merged.Keys())

	partial, ok := merged.Get("partial")
	require.True(t, ok)
	assert.Equal(t, []models.Point{{X: 2}, {X: 3}, {X: 4}}, partial.Points)
	assert.Equal(t, 3, partial.Polygons)
}

func TestScalarsByAttribute(t *testing.T) {
	res := sampleResult(t)

	s := ScalarsByAttribute(res, "thickness")
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []float64{1.5, 1.5, 3, 0.5, 0.5}, s.Values)
	assert.Equal(t, 0.5, s.Min)
	assert.Equal(t, 3.0, s.Max)

	// String attributes carry no scalar
	empty := ScalarsByAttribute(res, "kind")
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0.0, empty.Min)
	assert.Equal(t, 0.0, empty.Max)
}

func TestMergeScalars(t *testing.T) {
	a := Scalars{Points: []models.Point{{X: 1}}, Values: []float64{2}, Min: 2, Max: 2}
	b := Scalars{Points: []models.Point{{X: 2}, {X: 3}}, Values: []float64{7, 9}, Min: 7, Max: 9}

	s := MergeScalars(a, Scalars{}, b)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{2, 7, 9}, s.Values)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
}

func TestSnapshotRoundTrip(t *testing.T) {
	res := sampleResult(t)
	polygons := make([]models.Polygon, 0, 4)
	for _, e := range res.Entries {
		polygons = append(polygons, e.Polygon)
	}

	snap, err := NewSnapshot(res, samplePoints)
	require.NoError(t, err)
	assert.Len(t, snap.Subsets, 3)

	for _, name := range []string{"result.gob", "result.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveSnapshot(path, snap))

			loaded, err := LoadSnapshot(path)
			require.NoError(t, err)
			assert.Equal(t, snap.RunID, loaded.RunID)
			assert.Equal(t, ExactContainment, loaded.Method)

			restored, err := loaded.Restore(polygons)
			require.NoError(t, err)
			require.Equal(t, res.Len(), restored.Len())
			for i := range res.Entries {
				assert.Equal(t, res.Entries[i].Polygon.ID, restored.Entries[i].Polygon.ID)
				assert.Equal(t, res.Entries[i].Points, restored.Entries[i].Points)
			}
			// Groupings re-derive from the restored result
			assert.Equal(t, GroupByAttribute(res, "kind").Keys(), GroupByAttribute(restored, "kind").Keys())
		})
	}
}

func TestSnapshotMatches(t *testing.T) {
	res := sampleResult(t)
	snap, err := NewSnapshot(res, samplePoints)
	require.NoError(t, err)

	assert.True(t, snap.Matches(ExactContainment, samplePoints))
	assert.True(t, snap.Matches(ExactContainment, append([]models.Point(nil), samplePoints...)))
	assert.False(t, snap.Matches(BoundingBox, samplePoints), "other method")
	assert.False(t, snap.Matches(ExactContainment, samplePoints[:3]), "decimated points")

	moved := append([]models.Point(nil), samplePoints...)
	moved[4].Z = 1
	assert.False(t, snap.Matches(ExactContainment, moved), "other point file")

	path := filepath.Join(t.TempDir(), "walls.json")
	require.NoError(t, SaveSnapshot(path, snap))
	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.True(t, loaded.Matches(ExactContainment, samplePoints))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint(samplePoints), Fingerprint(samplePoints))
	assert.NotEqual(t, Fingerprint(nil), Fingerprint(samplePoints[:1]))

	swapped := []models.Point{samplePoints[1], samplePoints[0]}
	assert.NotEqual(t, Fingerprint(samplePoints[:2]), Fingerprint(swapped))
}

func TestSnapshotRestoreUnknownKey(t *testing.T) {
	res := sampleResult(t)
	snap, err := NewSnapshot(res, samplePoints)
	require.NoError(t, err)

	_, err = snap.Restore([]models.Polygon{res.Entries[0].Polygon})
	assert.Error(t, err)
}

func TestSnapshotRequiresDistinctIDs(t *testing.T) {
	res := sampleResult(t)
	res.Entries[1].Polygon.ID = res.Entries[0].Polygon.ID
	_, err := NewSnapshot(res, samplePoints)
	assert.Error(t, err)

	res.Entries[1].Polygon.ID = ""
	_, err = NewSnapshot(res, samplePoints)
	assert.Error(t, err)
}

func TestCodecFor(t *testing.T) {
	assert.IsType(t, JSONCodec{}, CodecFor("a/b.JSON"))
	assert.IsType(t, GobCodec{}, CodecFor("walls.pts"))
}
