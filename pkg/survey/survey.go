// Package survey classifies a point cloud against several polygon sources
// and merges the per-source results by attribute tag.
package survey

import (
	"errors"
	"fmt"

	"github.com/kass/go-pointclass/pkg/attrs"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/models"
)

var (
	ErrUnknownTag = errors.New("unknown attribute tag")
	ErrWrongKind  = errors.New("attribute has the wrong kind")
)

// Layer is one polygon source, such as walls or structures
type Layer struct {
	Source   string
	Polygons []models.Polygon
}

// Classified is the result of one layer. Polygons are the prepared copies
// the result was computed on.
type Classified struct {
	Source   string
	Polygons []models.Polygon
	Result   classify.Result
}

// Survey runs the classifier over layers using an attribute table
type Survey struct {
	table      *attrs.Table
	classifier *classify.Classifier
	method     classify.Method
}

// New creates a survey. A nil table uses attrs.DefaultTable and a nil
// classifier uses classify.New().
func New(table *attrs.Table, c *classify.Classifier, method classify.Method) *Survey {
	if table == nil {
		table = attrs.DefaultTable()
	}
	if c == nil {
		c = classify.New()
	}
	return &Survey{table: table, classifier: c, method: method}
}

// Table returns the attribute table in use
func (s *Survey) Table() *attrs.Table {
	return s.table
}

// Prepare applies the attribute table to every layer
func (s *Survey) Prepare(layers []Layer) ([]Layer, error) {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		polygons, err := s.table.Prepare(l.Source, l.Polygons)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare %s: %w", l.Source, err)
		}
		out[i] = Layer{Source: l.Source, Polygons: polygons}
	}
	return out, nil
}

// Classify prepares and classifies each layer in order
func (s *Survey) Classify(points []models.Point, layers []Layer) ([]Classified, error) {
	prepared, err := s.Prepare(layers)
	if err != nil {
		return nil, err
	}

	out := make([]Classified, len(prepared))
	for i, l := range prepared {
		res, err := s.classifier.Classify(points, l.Polygons, s.method)
		if err != nil {
			return nil, fmt.Errorf("failed to classify %s: %w", l.Source, err)
		}
		out[i] = Classified{Source: l.Source, Polygons: l.Polygons, Result: res}
	}
	return out, nil
}

func (s *Survey) lookup(tag string, kind attrs.Kind) (attrs.Definition, error) {
	def, ok := s.table.Lookup(tag)
	if !ok {
		return attrs.Definition{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if def.Kind != kind {
		return attrs.Definition{}, fmt.Errorf("%w: %q is %s", ErrWrongKind, tag, def.Kind)
	}
	return def, nil
}

// Groups merges the categorical groups of tag across results. Sources the
// tag has no field for are skipped.
func (s *Survey) Groups(tag string, results []Classified) (classify.Groups, error) {
	def, err := s.lookup(tag, attrs.Categorical)
	if err != nil {
		return nil, err
	}

	sets := make([]classify.Groups, 0, len(results))
	for _, r := range results {
		field, ok := def.Field(r.Source)
		if !ok {
			continue
		}
		sets = append(sets, classify.GroupByAttribute(r.Result, field))
	}
	return classify.MergeGroups(sets...), nil
}

// Scalars merges the numeric values of tag across results
func (s *Survey) Scalars(tag string, results []Classified) (classify.Scalars, error) {
	def, err := s.lookup(tag, attrs.Numeric)
	if err != nil {
		return classify.Scalars{}, err
	}

	sets := make([]classify.Scalars, 0, len(results))
	for _, r := range results {
		field, ok := def.Field(r.Source)
		if !ok {
			continue
		}
		sets = append(sets, classify.ScalarsByAttribute(r.Result, field))
	}
	return classify.MergeScalars(sets...), nil
}
