package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadXYZ(t *testing.T) {
	input := `# x y z
0 0 1.5

5,5,2
15	15	3 100 200 300
`
	points, err := ReadXYZ(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, models.Point{X: 0, Y: 0, Z: 1.5}, points[0])
	assert.Equal(t, models.Point{X: 5, Y: 5, Z: 2}, points[1])
	assert.Equal(t, 15.0, points[2].X)
	require.NotNil(t, points[2].Color)
	assert.Equal(t, models.RGB{R: 100, G: 200, B: 300}, *points[2].Color)
}

func TestReadXYZErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"too few columns", "0 0 0\n1 2\n", "line 2"},
		{"bad coordinate", "0 0 0\n\n1 x 2\n", "line 3"},
		{"bad color", "1 2 3 10 20 70000\n", "line 1"},
		{"nan coordinate", "NaN 2 3\n", "line 1"},
		{"infinite coordinate", "0 0 0\n4 inf 1\n", "line 2"},
		{"negative infinity", "1 2 -Inf\n", "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadXYZ(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestSaveLoadXYZ(t *testing.T) {
	points := []models.Point{
		{X: 1.25, Y: -2, Z: 3},
		{X: 4, Y: 5, Z: 6, Color: &models.RGB{R: 1, G: 2, B: 3}},
	}
	filename := filepath.Join(t.TempDir(), "cloud.xyz")
	require.NoError(t, SaveXYZ(filename, points))

	loaded, err := LoadXYZ(filename)
	require.NoError(t, err)
	assert.Equal(t, points, loaded)
}

func TestDecimate(t *testing.T) {
	points := make([]models.Point, 10)
	for i := range points {
		points[i] = models.Point{X: float64(i)}
	}

	got := Decimate(points, 3)
	require.Len(t, got, 4)
	for i, p := range got {
		assert.Equal(t, float64(i*3), p.X)
	}

	assert.Len(t, Decimate(points, 1), 10)
	assert.Len(t, Decimate(points, 0), 10)
	assert.Empty(t, Decimate(nil, 5))
}

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "wall-1",
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]],[[2,2],[3,2],[3,3],[2,2]]]},
      "properties": {"clase_rev": "adobe", "grosor": 0.6, "note": null}
    },
    {
      "type": "Feature",
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[20,0],[30,0],[30,10],[20,0]]],
        [[[40,0],[50,0],[50,10],[40,0]]]
      ]},
      "properties": {"id": 7, "visible": true}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [1,1]},
      "properties": {}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]},
      "properties": {}
    }
  ]
}`

func TestParseGeoJSON(t *testing.T) {
	polygons, err := ParseGeoJSON([]byte(featureCollection))
	require.NoError(t, err)
	require.Len(t, polygons, 3)

	wall := polygons[0]
	assert.Equal(t, "wall-1", wall.ID)
	require.Len(t, wall.Rings, 1, "holes are dropped")
	assert.Len(t, wall.Rings[0], 5)
	assert.Equal(t, models.StringAttr("adobe"), wall.Attr("clase_rev"))
	assert.Equal(t, models.NumberAttr(0.6), wall.Attr("grosor"))
	assert.True(t, wall.Attr("note").IsNull())

	multi := polygons[1]
	assert.Equal(t, "7", multi.ID)
	assert.Len(t, multi.Rings, 2)
	assert.Equal(t, models.StringAttr("true"), multi.Attr("visible"))

	// point feature skipped, ID falls back to the feature position
	assert.Equal(t, "3", polygons[2].ID)
}

func TestParseGeoJSONInvalid(t *testing.T) {
	_, err := ParseGeoJSON([]byte(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)
}

func TestMarshalGeoJSON(t *testing.T) {
	polygons := []models.Polygon{
		{
			ID:    "a",
			Rings: []orb.Ring{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
			Attributes: map[string]models.Attribute{
				"kind":  models.StringAttr("wall"),
				"width": models.NumberAttr(2),
			},
		},
		{
			ID: "b",
			Rings: []orb.Ring{
				{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
				{{5, 5}, {6, 5}, {6, 6}, {5, 5}},
			},
		},
	}

	data, err := MarshalGeoJSON(polygons)
	require.NoError(t, err)

	parsed, err := ParseGeoJSON(data)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "a", parsed[0].ID)
	assert.Equal(t, polygons[0].Rings, parsed[0].Rings)
	assert.Equal(t, polygons[0].Attributes, parsed[0].Attributes)
	assert.Equal(t, "b", parsed[1].ID)
	assert.Equal(t, polygons[1].Rings, parsed[1].Rings)
}

func TestExteriorParts(t *testing.T) {
	cw := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 0}}
	ccw := []shp.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 1}}

	t.Run("hole dropped", func(t *testing.T) {
		points := append(append([]shp.Point{}, cw...), ccw...)
		rings := exteriorParts([]int32{0, int32(len(cw))}, points)
		require.Len(t, rings, 1)
		assert.Equal(t, orb.Point{0, 4}, rings[0][1])
	})

	t.Run("no clockwise part keeps all", func(t *testing.T) {
		rings := exteriorParts([]int32{0}, ccw)
		require.Len(t, rings, 1)
		assert.Len(t, rings[0], 4)
	})
}

func TestLoadShapefile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "walls.shp")

	w, err := shp.Create(filename, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("name", 16),
		shp.StringField("clase_rev", 16),
	}))

	squares := [][]shp.Point{
		{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}},
		{{X: 20, Y: 0}, {X: 20, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 0}, {X: 20, Y: 0}},
	}
	for i, sq := range squares {
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{sq}))
		row := w.Write(&poly)
		require.NoError(t, w.WriteAttribute(int(row), 0, []string{"w1", "w2"}[i]))
		// blank values read back as null
		require.NoError(t, w.WriteAttribute(int(row), 1, []string{"adobe", " "}[i]))
	}
	w.Close()

	// go-shp writes the dBase table next to the shapefile without the dot
	base := strings.TrimSuffix(filename, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))

	polygons, err := LoadShapefile(filename, "name")
	require.NoError(t, err)
	require.Len(t, polygons, 2)

	assert.Equal(t, "w1", polygons[0].ID)
	assert.Equal(t, "w2", polygons[1].ID)
	assert.Equal(t, models.StringAttr("adobe"), polygons[0].Attr("clase_rev"))
	assert.True(t, polygons[1].Attr("clase_rev").IsNull())
	require.Len(t, polygons[0].Rings, 1)
	assert.Equal(t, models.BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, models.BoxOf(polygons[0].Bound()))

	_, err = LoadShapefile(filepath.Join(t.TempDir(), "missing.shp"), "")
	assert.Error(t, err)
}
