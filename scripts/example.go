package main

import (
	"fmt"
	"log"

	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/legend"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/paulmach/orb"
)

func main() {
	points := []models.Point{
		{X: 0, Y: 0, Z: 1},
		{X: 5, Y: 5, Z: 2},
		{X: 15, Y: 15, Z: 3},
		{X: 10, Y: 5, Z: 4}, // on the right edge of the first room
		{X: 22, Y: 22, Z: 5},
	}

	polygons := []models.Polygon{
		{
			ID:    "room_a",
			Rings: []orb.Ring{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
			Attributes: map[string]models.Attribute{
				"material": models.StringAttr("adobe"),
				"height":   models.NumberAttr(2.5),
			},
		},
		{
			ID:    "room_b",
			Rings: []orb.Ring{{{12, 12}, {20, 12}, {20, 20}, {12, 20}, {12, 12}}},
			Attributes: map[string]models.Attribute{
				"material": models.StringAttr("stone"),
				"height":   models.NumberAttr(1.2),
			},
		},
		{
			// triangle whose bounding box holds (22, 22) but the ring does not
			ID:    "annex",
			Rings: []orb.Ring{{{20, 20}, {30, 20}, {30, 30}, {20, 20}}},
			Attributes: map[string]models.Attribute{
				"material": models.StringAttr("adobe"),
			},
		},
	}

	// Example 1: bounding boxes, edges excluded
	fmt.Println("=== Bounding Box ===")
	boxes, err := classify.Classify(points, polygons, classify.BoundingBox)
	if err != nil {
		log.Fatal(err)
	}
	printResult(boxes)

	// Example 2: exact containment, edges included
	fmt.Println("\n=== Exact Containment ===")
	exact, err := classify.New(classify.WithWorkers(2)).Classify(points, polygons, classify.ExactContainment)
	if err != nil {
		log.Fatal(err)
	}
	printResult(exact)

	// Example 3: group by material
	fmt.Println("\n=== Grouped by material ===")
	for _, e := range legend.Categorical(classify.GroupByAttribute(exact, "material")) {
		fmt.Printf("%s %-8s %d points\n", e.Hex(), e.Key, e.Points)
	}

	// Example 4: height colorbar
	fmt.Println("\n=== Height colorbar ===")
	scalars := classify.ScalarsByAttribute(exact, "height")
	cb := legend.ForScalars(scalars)
	for _, v := range cb.Labels(5) {
		fmt.Printf("%6.2f %s\n", v, cb.Color(v).Hex())
	}

	// Example 5: malformed polygons fail the whole call
	fmt.Println("\n=== Invalid geometry ===")
	broken := append(polygons, models.Polygon{ID: "line", Rings: []orb.Ring{{{0, 0}, {1, 1}}}})
	if _, err := classify.Classify(points, broken, classify.ExactContainment); err != nil {
		fmt.Printf("rejected: %v\n", err)
	}
}

func printResult(res classify.Result) {
	for _, e := range res.Entries {
		fmt.Printf("%s (input %d): %d points\n", e.Polygon.ID, e.Index, len(e.Points))
		for _, p := range e.Points {
			fmt.Printf("  (%g, %g, %g)\n", p.X, p.Y, p.Z)
		}
	}
}
