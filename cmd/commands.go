package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/legend"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/kass/go-pointclass/pkg/postgis"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

func swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
}

func runClassify(cmd *cobra.Command, args []string) error {
	points, err := loadPoints()
	if err != nil {
		return err
	}
	layers, err := loadLayers()
	if err != nil {
		return err
	}
	s, err := newSurvey()
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := s.Classify(points, layers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Classified %d points with %s in %v", len(points), methodName, elapsed)))
	for _, r := range results {
		fmt.Printf("%-12s %5d / %-5d polygons  %8d assignments\n",
			r.Source, r.Result.Len(), len(r.Polygons), r.Result.PointCount())
	}

	if saveDir == "" {
		return nil
	}
	if err := os.MkdirAll(saveDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	for _, r := range results {
		snap, err := classify.NewSnapshot(r.Result, points)
		if err != nil {
			return err
		}
		path := snapshotPath(saveDir, r.Source)
		if err := classify.SaveSnapshot(path, snap); err != nil {
			return err
		}
		glog.Infof("saved %s snapshot %s to %s", r.Source, snap.RunID, path)
	}
	return nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	tag := args[0]
	s, err := newSurvey()
	if err != nil {
		return err
	}
	def, ok := s.Table().Lookup(tag)
	if !ok {
		return fmt.Errorf("unknown tag %q, see the tags command", tag)
	}

	points, err := loadPoints()
	if err != nil {
		return err
	}
	layers, err := loadLayers()
	if err != nil {
		return err
	}
	results, err := classifyLayers(s, points, layers)
	if err != nil {
		return err
	}

	groups, err := s.Groups(tag, results)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(def.Label))
	for _, e := range legend.Categorical(groups) {
		fmt.Printf("%s %-24s %s\n", swatch(e.Hex()), e.Key, dimStyle.Render(fmt.Sprintf("%d points", e.Points)))
	}
	return nil
}

func runScalars(cmd *cobra.Command, args []string) error {
	tag := args[0]
	s, err := newSurvey()
	if err != nil {
		return err
	}
	def, ok := s.Table().Lookup(tag)
	if !ok {
		return fmt.Errorf("unknown tag %q, see the tags command", tag)
	}

	points, err := loadPoints()
	if err != nil {
		return err
	}
	layers, err := loadLayers()
	if err != nil {
		return err
	}
	results, err := classifyLayers(s, points, layers)
	if err != nil {
		return err
	}

	scalars, err := s.Scalars(tag, results)
	if err != nil {
		return err
	}

	cb := legend.ForScalars(scalars)
	fmt.Println(titleStyle.Render(def.Label))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d points, range [%g, %g]", scalars.Len(), cb.Min, cb.Max)))
	for _, v := range cb.Labels(legend.DefaultLabels) {
		fmt.Printf("%s %8.3f\n", swatch(cb.Color(v).Hex()), v)
	}
	return nil
}

type located struct {
	Layer      string            `json:"layer"`
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}

	layers, err := loadLayers()
	if err != nil {
		return err
	}
	s, err := newSurvey()
	if err != nil {
		return err
	}

	results, err := s.Classify([]models.Point{{X: x, Y: y}}, layers)
	if err != nil {
		return err
	}

	var found []located
	for _, r := range results {
		for _, e := range r.Result.Entries {
			found = append(found, located{Layer: r.Source, ID: e.Polygon.ID, Attributes: attributeStrings(e.Polygon)})
		}
	}
	glog.V(1).Infof("(%g, %g) is in %d polygons", x, y, len(found))

	if len(found) > limit {
		glog.Infof("showing first %d polygons (use --limit to see more)", limit)
		found = found[:limit]
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(found)
	}
	for i, f := range found {
		fmt.Printf("%d. %s %s\n", i+1, f.Layer, f.ID)
	}
	return nil
}

func attributeStrings(pg models.Polygon) map[string]string {
	out := make(map[string]string, len(pg.Attributes))
	for k, a := range pg.Attributes {
		switch a.Kind {
		case models.String:
			out[k] = a.Str
		case models.Number:
			out[k] = strconv.FormatFloat(a.Num, 'g', -1, 64)
		}
	}
	return out
}

func runImport(cmd *cobra.Command, args []string) error {
	if dsn == "" {
		return fmt.Errorf("--dsn is required")
	}

	// read files only, never the database being written
	target := dsn
	dsn = ""
	layers, err := loadLayers()
	if err != nil {
		return err
	}

	for _, l := range layers {
		store, err := postgis.NewPolygonStore(target, l.Source)
		if err != nil {
			return err
		}
		if err := store.InitSchema(); err != nil {
			store.Close()
			return err
		}

		start := time.Now()
		if err := store.InsertPolygons(l.Polygons); err != nil {
			store.Close()
			return err
		}
		count, err := store.Count()
		store.Close()
		if err != nil {
			return err
		}
		fmt.Printf("Stored %d %s in %v\n", count, l.Source, time.Since(start))
	}
	return nil
}

func runTags(cmd *cobra.Command, args []string) error {
	s, err := newSurvey()
	if err != nil {
		return err
	}
	for _, def := range s.Table().Definitions() {
		fmt.Printf("%-18s %-12s %s\n", def.Tag, def.Kind, dimStyle.Render(def.Label))
	}
	return nil
}
