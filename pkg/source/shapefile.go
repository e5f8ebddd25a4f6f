package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/jonas-p/go-shp"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/paulmach/orb"
)

// LoadShapefile reads the polygon records of an ESRI shapefile. Parts
// wound clockwise are exterior rings; when no part is clockwise every part
// is kept. dBase fields become string attributes, blank values become Null.
// idField names the field used as polygon ID; when empty or blank the
// record number is used.
func LoadShapefile(filename, idField string) ([]models.Polygon, error) {
	reader, err := shp.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer reader.Close()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var polygons []models.Polygon
	skipped := 0
	for reader.Next() {
		n, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		attrs := make(map[string]models.Attribute, len(names))
		for k, name := range names {
			value := strings.TrimSpace(strings.Trim(reader.ReadAttribute(n, k), "\x00"))
			if value == "" {
				attrs[name] = models.Attribute{}
				continue
			}
			attrs[name] = models.StringAttr(value)
		}

		id := strconv.Itoa(n)
		if a, ok := attrs[idField]; idField != "" && ok && !a.IsNull() {
			id = a.Str
		}

		polygons = append(polygons, models.Polygon{
			ID:         id,
			Rings:      exteriorParts(poly.Parts, poly.Points),
			Attributes: attrs,
		})
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shapefile: %w", err)
	}

	if skipped > 0 {
		glog.Warningf("%s: skipped %d non-polygon records", filename, skipped)
	}
	glog.V(1).Infof("read %d polygons from %s", len(polygons), filename)
	return polygons, nil
}

// exteriorParts splits the flat point list into rings and keeps the
// clockwise ones
func exteriorParts(parts []int32, points []shp.Point) []orb.Ring {
	rings := make([]orb.Ring, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, ring)
	}

	exterior := make([]orb.Ring, 0, len(rings))
	for _, r := range rings {
		if r.Orientation() == orb.CW {
			exterior = append(exterior, r)
		}
	}
	if len(exterior) == 0 {
		return rings
	}
	return exterior
}
