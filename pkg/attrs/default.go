package attrs

// Source names used by DefaultTable
const (
	SourceWalls      = "walls"
	SourceStructures = "structures"
)

// DefaultTable is the table of the wall and structure survey the tool was
// first written for.
func DefaultTable() *Table {
	t, err := NewTable([]Definition{
		{
			Tag: "type", Label: "Type of Wall/Structure", Kind: Categorical,
			Fields: map[string]string{SourceWalls: "clase_rev", SourceStructures: "design_co1"},
		},
		{
			Tag: "completeness", Label: "Completeness", Kind: Categorical,
			Fields: map[string]string{SourceWalls: "preserva_1", SourceStructures: "preserva_1"},
		},
		{
			Tag: "construction", Label: "Time of Construction", Kind: Categorical,
			Fields: map[string]string{SourceStructures: "temp_con_2"},
		},
		{
			Tag: "thickness", Label: "Wall Thickness", Kind: Numeric,
			Fields: map[string]string{SourceWalls: "grosor", SourceStructures: "grosor_1"},
		},
		{
			Tag: "original_height", Label: "Maximum Original Height", Kind: Numeric,
			Fields: map[string]string{SourceWalls: "alt_max"},
		},
		{
			Tag: "conserved_height", Label: "Maximum Conserved Height", Kind: Numeric,
			Fields: map[string]string{SourceWalls: "alt_cons", SourceStructures: "alt"},
		},
	}, []Derived{
		{Source: SourceStructures, Field: "alt", MaxOf: []string{"alt_muro_1", "altura_has", "altura_h_1"}},
	})
	if err != nil {
		panic(err)
	}
	return t
}
