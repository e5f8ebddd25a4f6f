package main

import (
	"fmt"
	"time"

	"github.com/kass/go-pointclass/pkg/attrs"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/legend"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/kass/go-pointclass/pkg/scene"
	"github.com/kass/go-pointclass/pkg/survey"
)

// polygons classified per progress update
const chunkSize = 4

type demoOptions struct {
	points  int
	rooms   int
	method  classify.Method
	workers int
}

type sceneStats struct {
	points     int
	walls      int
	structures int
	duration   time.Duration
	method     classify.Method
	workers    int
}

type layerStats struct {
	source      string
	hit         int
	assignments int
	duration    time.Duration
}

type report struct {
	layers        []layerStats
	categoryLabel string
	categories    []legend.Entry
	scalarLabel   string
	colorbar      *legend.Colorbar
}

func executeDemo(opts demoOptions) {
	start := time.Now()
	sceneOpts := scene.DefaultOptions()
	sceneOpts.Points = opts.points
	sceneOpts.Rooms = opts.rooms
	sceneOpts.Seed = time.Now().UnixNano()
	s := scene.Generate(sceneOpts)

	c := classify.New(classify.WithWorkers(opts.workers))
	program.Send(sceneMsg(sceneStats{
		points:     len(s.Points),
		walls:      len(s.Walls),
		structures: len(s.Structures),
		duration:   since(start),
		method:     opts.method,
		workers:    c.Workers(),
	}))

	sv := survey.New(nil, c, opts.method)
	layers, err := sv.Prepare([]survey.Layer{
		{Source: attrs.SourceWalls, Polygons: s.Walls},
		{Source: attrs.SourceStructures, Polygons: s.Structures},
	})
	if err != nil {
		program.Send(errMsg{err})
		return
	}

	var r report
	results := make([]survey.Classified, 0, len(layers))
	for _, l := range layers {
		start := time.Now()
		res, err := classifyInChunks(c, s.Points, l, opts.method)
		if err != nil {
			program.Send(errMsg{err})
			return
		}
		stats := layerStats{source: l.Source, hit: res.Len(), assignments: res.PointCount(), duration: since(start)}
		program.Send(messageMsg(fmt.Sprintf("%s: %d of %d polygons hit", l.Source, stats.hit, len(l.Polygons))))

		r.layers = append(r.layers, stats)
		results = append(results, survey.Classified{Source: l.Source, Polygons: l.Polygons, Result: res})
	}

	groups, err := sv.Groups("type", results)
	if err != nil {
		program.Send(errMsg{err})
		return
	}
	scalars, err := sv.Scalars("thickness", results)
	if err != nil {
		program.Send(errMsg{err})
		return
	}

	typeDef, _ := sv.Table().Lookup("type")
	thicknessDef, _ := sv.Table().Lookup("thickness")
	r.categoryLabel = typeDef.Label
	r.categories = legend.Categorical(groups)
	r.scalarLabel = thicknessDef.Label
	r.colorbar = legend.ForScalars(scalars)

	program.Send(reportMsg(r))
}

// classifyInChunks classifies a few polygons at a time to report progress.
// Entry indexes are shifted back to positions in the whole layer.
func classifyInChunks(c *classify.Classifier, points []models.Point, l survey.Layer, method classify.Method) (classify.Result, error) {
	out := classify.Result{Method: method, Entries: []classify.Entry{}}
	total := len(l.Polygons)

	for offset := 0; offset < total; offset += chunkSize {
		end := min(offset+chunkSize, total)

		res, err := c.Classify(points, l.Polygons[offset:end], method)
		if err != nil {
			return classify.Result{}, err
		}
		for _, e := range res.Entries {
			e.Index += offset
			out.Entries = append(out.Entries, e)
		}

		program.Send(progressMsg{layer: l.Source, percent: float64(end) / float64(total)})
	}

	return out, nil
}
