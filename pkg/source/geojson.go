package source

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON converts a FeatureCollection into polygons. Polygon and
// MultiPolygon features keep their exterior rings; other geometries are
// skipped. The ID comes from the feature id, an "id" property, or the
// feature position.
func ParseGeoJSON(data []byte) ([]models.Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}

	polygons := make([]models.Polygon, 0, len(fc.Features))
	for i, f := range fc.Features {
		rings := exteriorRings(f.Geometry)
		if rings == nil {
			glog.V(1).Infof("skipping feature %d: geometry is not a polygon", i)
			continue
		}

		polygons = append(polygons, models.Polygon{
			ID:         featureID(i, f),
			Rings:      rings,
			Attributes: propertiesToAttributes(f.Properties),
		})
	}

	return polygons, nil
}

// LoadGeoJSON reads a GeoJSON FeatureCollection file
func LoadGeoJSON(filename string) ([]models.Polygon, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	polygons, err := ParseGeoJSON(data)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("read %d polygons from %s", len(polygons), filename)
	return polygons, nil
}

// MarshalGeoJSON is the inverse of ParseGeoJSON
func MarshalGeoJSON(polygons []models.Polygon) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, pg := range polygons {
		var geom orb.Geometry
		if len(pg.Rings) == 1 {
			geom = orb.Polygon{pg.Rings[0]}
		} else {
			mp := make(orb.MultiPolygon, len(pg.Rings))
			for i, r := range pg.Rings {
				mp[i] = orb.Polygon{r}
			}
			geom = mp
		}

		f := geojson.NewFeature(geom)
		f.ID = pg.ID
		for k, a := range pg.Attributes {
			switch a.Kind {
			case models.String:
				f.Properties[k] = a.Str
			case models.Number:
				f.Properties[k] = a.Num
			default:
				f.Properties[k] = nil
			}
		}
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

func exteriorRings(g orb.Geometry) []orb.Ring {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return []orb.Ring{}
		}
		return []orb.Ring{geom[0]}
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(geom))
		for _, p := range geom {
			if len(p) > 0 {
				rings = append(rings, p[0])
			}
		}
		return rings
	default:
		return nil
	}
}

func featureID(i int, f *geojson.Feature) string {
	if id := scalarString(f.ID); id != "" {
		return id
	}
	if id := scalarString(f.Properties["id"]); id != "" {
		return id
	}
	return strconv.Itoa(i)
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func propertiesToAttributes(props geojson.Properties) map[string]models.Attribute {
	out := make(map[string]models.Attribute, len(props))
	for k, v := range props {
		switch x := v.(type) {
		case nil:
			out[k] = models.Attribute{}
		case string:
			out[k] = models.StringAttr(x)
		case float64:
			out[k] = models.NumberAttr(x)
		case bool:
			out[k] = models.StringAttr(strconv.FormatBool(x))
		default:
			out[k] = models.StringAttr(fmt.Sprint(x))
		}
	}
	return out
}
