// Package attrs describes which polygon fields feed each displayable
// attribute, per polygon source, and prepares polygon attribute values
// (numeric coercion, derived fields) before grouping.
package attrs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidTable is returned when a table definition is inconsistent
	ErrInvalidTable = errors.New("invalid attribute table")
	// ErrMissingField is returned when no polygon of a source has a bound field
	ErrMissingField = errors.New("missing attribute field")
)

// Kind is how an attribute is displayed
type Kind string

const (
	// Categorical attributes are grouped by value, one legend entry each
	Categorical Kind = "categorical"
	// Numeric attributes become per-point scalars on a colorbar
	Numeric Kind = "numeric"
)

// Definition binds one attribute tag to a field in each polygon source
type Definition struct {
	Tag    string            `yaml:"tag"`
	Label  string            `yaml:"label"`
	Kind   Kind              `yaml:"kind"`
	Fields map[string]string `yaml:"fields"`
}

// Field returns the field bound for source
func (d Definition) Field(source string) (string, bool) {
	f, ok := d.Fields[source]
	return f, ok
}

// Sources returns the bound source names, sorted
func (d Definition) Sources() []string {
	out := make([]string, 0, len(d.Fields))
	for s := range d.Fields {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Derived computes Field of a source as the maximum of other numeric fields
type Derived struct {
	Source string   `yaml:"source"`
	Field  string   `yaml:"field"`
	MaxOf  []string `yaml:"max_of"`
}

// Table is a validated set of attribute definitions
type Table struct {
	defs    []Definition
	derived []Derived
	byTag   map[string]int
}

type tableFile struct {
	Attributes []Definition `yaml:"attributes"`
	Derived    []Derived    `yaml:"derived"`
}

// NewTable validates the definitions. Tags must be unique and non-empty,
// kinds known, and every definition needs at least one source binding.
func NewTable(defs []Definition, derived []Derived) (*Table, error) {
	t := &Table{
		defs:    make([]Definition, 0, len(defs)),
		derived: append([]Derived(nil), derived...),
		byTag:   make(map[string]int, len(defs)),
	}

	for i, d := range defs {
		if d.Tag == "" {
			return nil, fmt.Errorf("%w: definition %d has no tag", ErrInvalidTable, i)
		}
		if _, dup := t.byTag[d.Tag]; dup {
			return nil, fmt.Errorf("%w: duplicate tag %q", ErrInvalidTable, d.Tag)
		}
		if d.Kind != Categorical && d.Kind != Numeric {
			return nil, fmt.Errorf("%w: tag %q has unknown kind %q", ErrInvalidTable, d.Tag, d.Kind)
		}
		if len(d.Fields) == 0 {
			return nil, fmt.Errorf("%w: tag %q is not bound to any source", ErrInvalidTable, d.Tag)
		}
		for src, f := range d.Fields {
			if src == "" || f == "" {
				return nil, fmt.Errorf("%w: tag %q has an empty source or field name", ErrInvalidTable, d.Tag)
			}
		}
		if d.Label == "" {
			d.Label = d.Tag
		}
		t.byTag[d.Tag] = len(t.defs)
		t.defs = append(t.defs, d)
	}

	for i, d := range derived {
		if d.Source == "" || d.Field == "" || len(d.MaxOf) == 0 {
			return nil, fmt.Errorf("%w: derived field %d needs source, field and max_of", ErrInvalidTable, i)
		}
	}

	return t, nil
}

// ParseTable reads a YAML table
func ParseTable(r io.Reader) (*Table, error) {
	var f tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode attribute table: %w", err)
	}
	return NewTable(f.Attributes, f.Derived)
}

// LoadTable reads a YAML table file
func LoadTable(filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseTable(file)
}

// Definitions returns the definitions in declaration order
func (t *Table) Definitions() []Definition {
	return append([]Definition(nil), t.defs...)
}

// Lookup finds a definition by tag
func (t *Table) Lookup(tag string) (Definition, bool) {
	i, ok := t.byTag[tag]
	if !ok {
		return Definition{}, false
	}
	return t.defs[i], true
}

// Tags returns the tags in declaration order
func (t *Table) Tags() []string {
	tags := make([]string, len(t.defs))
	for i, d := range t.defs {
		tags[i] = d.Tag
	}
	return tags
}
