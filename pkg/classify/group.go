package classify

import (
	"math"
	"strconv"

	"github.com/kass/go-pointclass/pkg/models"
)

// Group is every point of the polygons sharing one categorical value
type Group struct {
	Key    string
	Points []models.Point
	// Polygons is the number of result entries merged into the group
	Polygons int
}

// Groups keeps groups in order of first appearance
type Groups []Group

// Keys returns the group keys in order
func (gs Groups) Keys() []string {
	keys := make([]string, len(gs))
	for i, g := range gs {
		keys[i] = g.Key
	}
	return keys
}

// Get looks a group up by key
func (gs Groups) Get(key string) (Group, bool) {
	for _, g := range gs {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// Map returns the key to points mapping
func (gs Groups) Map() map[string][]models.Point {
	m := make(map[string][]models.Point, len(gs))
	for _, g := range gs {
		m[g.Key] = g.Points
	}
	return m
}

// GroupByAttribute merges the subsets of polygons whose attribute field has the
// same value. Subsets are concatenated in result order. String values are used
// as is and numeric values are formatted; polygons with a null value are left
// out.
func GroupByAttribute(res Result, field string) Groups {
	var groups Groups
	pos := make(map[string]int)

	for _, e := range res.Entries {
		key, ok := categoryKey(e.Polygon.Attr(field))
		if !ok {
			continue
		}

		i, found := pos[key]
		if !found {
			i = len(groups)
			pos[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Points = append(groups[i].Points, e.Points...)
		groups[i].Polygons++
	}

	return groups
}

// MergeGroups combines groupings computed from different polygon sources.
// Points of equal keys are concatenated in argument order.
func MergeGroups(sets ...Groups) Groups {
	var merged Groups
	pos := make(map[string]int)

	for _, gs := range sets {
		for _, g := range gs {
			i, found := pos[g.Key]
			if !found {
				i = len(merged)
				pos[g.Key] = i
				merged = append(merged, Group{Key: g.Key})
			}
			merged[i].Points = append(merged[i].Points, g.Points...)
			merged[i].Polygons += g.Polygons
		}
	}

	return merged
}

func categoryKey(a models.Attribute) (string, bool) {
	switch a.Kind {
	case models.String:
		return a.Str, true
	case models.Number:
		return formatNumber(a.Num), true
	default:
		return "", false
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Scalars is a flat list of points each carrying its polygon's numeric value
type Scalars struct {
	Points []models.Point
	Values []float64
	Min    float64
	Max    float64
}

// Len returns the number of points
func (s Scalars) Len() int {
	return len(s.Points)
}

// ScalarsByAttribute gives every point of every entry the numeric value of
// its polygon's field. Min and Max span the values of the contributing
// polygons. Polygons with a null or non-numeric value are skipped.
func ScalarsByAttribute(res Result, field string) Scalars {
	s := Scalars{Min: math.Inf(1), Max: math.Inf(-1)}

	for _, e := range res.Entries {
		a := e.Polygon.Attr(field)
		if a.Kind != models.Number {
			continue
		}
		s.extend(e.Points, a.Num)
	}

	return s.normalize()
}

// MergeScalars concatenates scalar lists and widens the range
func MergeScalars(sets ...Scalars) Scalars {
	s := Scalars{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, other := range sets {
		if other.Len() == 0 {
			continue
		}
		s.Points = append(s.Points, other.Points...)
		s.Values = append(s.Values, other.Values...)
		s.Min = math.Min(s.Min, other.Min)
		s.Max = math.Max(s.Max, other.Max)
	}
	return s.normalize()
}

func (s *Scalars) extend(points []models.Point, v float64) {
	for _, p := range points {
		s.Points = append(s.Points, p)
		s.Values = append(s.Values, v)
	}
	s.Min = math.Min(s.Min, v)
	s.Max = math.Max(s.Max, v)
}

// normalize zeroes the range of an empty list
func (s Scalars) normalize() Scalars {
	if len(s.Points) == 0 {
		s.Min, s.Max = 0, 0
	}
	return s
}
