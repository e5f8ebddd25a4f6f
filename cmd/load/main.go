package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/attrs"
	"github.com/kass/go-pointclass/pkg/scene"
	"github.com/kass/go-pointclass/pkg/source"
)

func main() {
	defaults := scene.DefaultOptions()
	var (
		numPoints = flag.Int("n", 1000000, "Number of points to generate")
		outputDir = flag.String("o", "data", "Output directory")
		workers   = flag.Int("w", runtime.NumCPU(), "Number of worker goroutines")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		rooms     = flag.Int("rooms", defaults.Rooms, "Rooms per side of the site")
		roomSize  = flag.Float64("room-size", defaults.RoomSize, "Room side length")
		thickness = flag.Float64("thickness", defaults.WallThickness, "Wall thickness")
	)
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		glog.Fatalf("Failed to create output directory: %v", err)
	}

	glog.Infof("Generating %d points over %dx%d rooms with %d workers (seed %d)", *numPoints, *rooms, *rooms, *workers, *seed)
	start := time.Now()
	s := scene.Generate(scene.Options{
		Points:        *numPoints,
		Rooms:         *rooms,
		RoomSize:      *roomSize,
		WallThickness: *thickness,
		Seed:          *seed,
		Workers:       *workers,
	})
	glog.Infof("Scene generated in %v: %d walls, %d structures", time.Since(start), len(s.Walls), len(s.Structures))

	pointsPath := filepath.Join(*outputDir, "points.xyz")
	start = time.Now()
	if err := source.SaveXYZ(pointsPath, s.Points); err != nil {
		glog.Fatalf("Failed to save points: %v", err)
	}
	glog.Infof("Points saved to %s in %v", pointsPath, time.Since(start))

	for _, layer := range []string{attrs.SourceWalls, attrs.SourceStructures} {
		data, err := source.MarshalGeoJSON(s.Layers()[layer])
		if err != nil {
			glog.Fatalf("Failed to encode %s: %v", layer, err)
		}
		path := filepath.Join(*outputDir, layer+".geojson")
		if err := os.WriteFile(path, data, 0644); err != nil {
			glog.Fatalf("Failed to save %s: %v", layer, err)
		}
		glog.Infof("%s saved to %s", layer, path)
	}

	if info, err := os.Stat(pointsPath); err == nil {
		glog.Infof("Point file size: %.2f MB", float64(info.Size())/(1024*1024))
	}
}
