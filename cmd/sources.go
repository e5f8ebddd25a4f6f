package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/attrs"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/kass/go-pointclass/pkg/postgis"
	"github.com/kass/go-pointclass/pkg/source"
	"github.com/kass/go-pointclass/pkg/survey"
)

func loadPoints() ([]models.Point, error) {
	if pointsFile == "" {
		return nil, errors.New("--points is required")
	}
	points, err := source.LoadXYZ(pointsFile)
	if err != nil {
		return nil, err
	}

	if !allPoints {
		points = source.Decimate(points, decimate)
	}
	glog.Infof("using %d points from %s", len(points), pointsFile)
	return points, nil
}

func loadPolygons(path, layer string) ([]models.Polygon, error) {
	if path == "" {
		if dsn == "" {
			return nil, nil
		}
		store, err := postgis.NewPolygonStore(dsn, layer)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadPolygons()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return source.LoadShapefile(path, idField)
	case ".geojson", ".json":
		return source.LoadGeoJSON(path)
	default:
		return nil, fmt.Errorf("unsupported polygon file %s", path)
	}
}

// loadLayers returns the configured polygon layers, walls first
func loadLayers() ([]survey.Layer, error) {
	var layers []survey.Layer
	for _, l := range []struct{ source, path string }{
		{attrs.SourceWalls, wallsFile},
		{attrs.SourceStructures, structuresFile},
	} {
		polygons, err := loadPolygons(l.path, l.source)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.source, err)
		}
		if polygons == nil {
			continue
		}
		glog.Infof("loaded %d %s", len(polygons), l.source)
		layers = append(layers, survey.Layer{Source: l.source, Polygons: polygons})
	}

	if len(layers) == 0 {
		return nil, errors.New("no polygon layer given, use --walls, --structures or --dsn")
	}
	return layers, nil
}

func newSurvey() (*survey.Survey, error) {
	method, err := classify.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}

	var table *attrs.Table
	if tableFile != "" {
		if table, err = attrs.LoadTable(tableFile); err != nil {
			return nil, err
		}
	}

	c := classify.New(classify.WithWorkers(numWorkers), classify.WithIndex(!noIndex))
	return survey.New(table, c, method), nil
}

func snapshotPath(dir, layer string) string {
	ext := ".gob"
	if jsonOutput {
		ext = ".json"
	}
	return filepath.Join(dir, layer+ext)
}

// classifyLayers classifies every layer, reusing snapshots from loadDir
// taken with the same method over the same points. Changing the point file
// or the decimation changes the points, so those snapshots are not reused.
func classifyLayers(s *survey.Survey, points []models.Point, layers []survey.Layer) ([]survey.Classified, error) {
	if loadDir == "" {
		return s.Classify(points, layers)
	}

	method, err := classify.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}

	prepared, err := s.Prepare(layers)
	if err != nil {
		return nil, err
	}

	out := make([]survey.Classified, 0, len(prepared))
	for _, l := range prepared {
		snap, err := findSnapshot(l.Source)
		if err != nil {
			return nil, err
		}
		if snap != nil && snap.Matches(method, points) {
			res, err := snap.Restore(l.Polygons)
			if err != nil {
				return nil, err
			}
			glog.Infof("restored %s from snapshot %s", l.Source, snap.RunID)
			out = append(out, survey.Classified{Source: l.Source, Polygons: l.Polygons, Result: res})
			continue
		}
		if snap != nil {
			glog.Warningf("snapshot %s of %s was taken with %s over another point set, classifying again",
				snap.RunID, l.Source, snap.Method)
		}

		// Prepare is idempotent
		classified, err := s.Classify(points, []survey.Layer{l})
		if err != nil {
			return nil, err
		}
		out = append(out, classified[0])
	}
	return out, nil
}

func findSnapshot(layer string) (*classify.Snapshot, error) {
	for _, ext := range []string{".gob", ".json"} {
		path := filepath.Join(loadDir, layer+ext)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return classify.LoadSnapshot(path)
	}
	return nil, nil
}
