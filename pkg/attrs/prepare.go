package attrs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kass/go-pointclass/pkg/models"
)

// Coerce converts a value to a number. Strings that do not parse become Null.
func Coerce(a models.Attribute) models.Attribute {
	switch a.Kind {
	case models.Number:
		return a
	case models.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Str), 64)
		if err != nil {
			return models.Attribute{}
		}
		return models.NumberAttr(v)
	default:
		return models.Attribute{}
	}
}

// Prepare returns copies of the polygons of source with derived fields
// computed and numeric fields coerced. A field bound to source that no
// polygon carries is an error wrapping ErrMissingField.
func (t *Table) Prepare(source string, polygons []models.Polygon) ([]models.Polygon, error) {
	out := make([]models.Polygon, len(polygons))
	for i, pg := range polygons {
		cp := pg
		cp.Attributes = make(map[string]models.Attribute, len(pg.Attributes)+len(t.derived))
		for k, v := range pg.Attributes {
			cp.Attributes[k] = v
		}
		out[i] = cp
	}

	for _, d := range t.derived {
		if d.Source != source {
			continue
		}
		for i := range out {
			out[i].Attributes[d.Field] = maxOf(out[i], d.MaxOf)
		}
	}

	for _, def := range t.defs {
		field, ok := def.Field(source)
		if !ok {
			continue
		}
		if len(out) > 0 && !anyHas(out, field) {
			return nil, fmt.Errorf("%w: source %q has no field %q (tag %q)", ErrMissingField, source, field, def.Tag)
		}
		if def.Kind != Numeric {
			continue
		}
		for i := range out {
			out[i].Attributes[field] = Coerce(out[i].Attributes[field])
		}
	}

	return out, nil
}

func maxOf(pg models.Polygon, fields []string) models.Attribute {
	best := math.Inf(-1)
	found := false
	for _, f := range fields {
		a := Coerce(pg.Attr(f))
		if a.IsNull() {
			continue
		}
		found = true
		best = math.Max(best, a.Num)
	}
	if !found {
		return models.Attribute{}
	}
	return models.NumberAttr(best)
}

func anyHas(polygons []models.Polygon, field string) bool {
	for _, pg := range polygons {
		if _, ok := pg.Attributes[field]; ok {
			return true
		}
	}
	return false
}
