package main

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/kass/go-pointclass/pkg/scene"
)

type BenchmarkResult struct {
	Name          string
	Runs          int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	Polygons      int
	Assignments   int
}

type config struct {
	name    string
	method  classify.Method
	workers int
	index   bool
}

func main() {
	var (
		numPoints = flag.Int("n", 500000, "Number of points to generate")
		rooms     = flag.Int("rooms", 8, "Rooms per side of the generated site")
		runs      = flag.Int("r", 5, "Runs per configuration")
		workers   = flag.Int("w", runtime.NumCPU(), "Workers for the pooled runs")
		seed      = flag.Int64("seed", 1, "Random seed")
		linear    = flag.Bool("linear", false, "Include runs without the R-tree index")
	)
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	opts := scene.DefaultOptions()
	opts.Points = *numPoints
	opts.Rooms = *rooms
	opts.Seed = *seed
	s := scene.Generate(opts)
	polygons := append(append([]models.Polygon{}, s.Walls...), s.Structures...)
	glog.Infof("Scene: %d points, %d polygons", len(s.Points), len(polygons))

	configs := []config{
		{"bbox", classify.BoundingBox, 1, true},
		{"exact serial", classify.ExactContainment, 1, true},
		{fmt.Sprintf("exact %d workers", *workers), classify.ExactContainment, *workers, true},
	}
	if *linear {
		configs = append(configs,
			config{"bbox linear", classify.BoundingBox, 1, false},
			config{fmt.Sprintf("exact %d workers linear", *workers), classify.ExactContainment, *workers, false},
		)
	}

	var results []BenchmarkResult
	for _, cfg := range configs {
		glog.Infof("Running %s...", cfg.name)
		result, err := benchmark(cfg, s.Points, polygons, *runs)
		if err != nil {
			glog.Fatalf("Benchmark %s failed: %v", cfg.name, err)
		}
		results = append(results, result)
	}

	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("%-28s %12s %12s %12s %10s %12s\n", "Configuration", "Avg", "Min", "Max", "Polygons", "Assignments")
	for _, r := range results {
		fmt.Printf("%-28s %12v %12v %12v %10d %12d\n",
			r.Name, r.AvgDuration, r.MinDuration, r.MaxDuration, r.Polygons, r.Assignments)
	}
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func benchmark(cfg config, points []models.Point, polygons []models.Polygon, runs int) (BenchmarkResult, error) {
	c := classify.New(classify.WithWorkers(cfg.workers), classify.WithIndex(cfg.index))
	result := BenchmarkResult{Name: cfg.name, MinDuration: time.Hour}

	for i := 0; i < runs; i++ {
		start := time.Now()
		res, err := c.Classify(points, polygons, cfg.method)
		if err != nil {
			return BenchmarkResult{}, err
		}
		d := time.Since(start)

		result.Runs++
		result.TotalDuration += d
		if d < result.MinDuration {
			result.MinDuration = d
		}
		if d > result.MaxDuration {
			result.MaxDuration = d
		}
		result.Polygons = res.Len()
		result.Assignments = res.PointCount()
	}

	if result.Runs > 0 {
		result.AvgDuration = result.TotalDuration / time.Duration(result.Runs)
	}
	return result, nil
}
