package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/config"
	"github.com/spf13/cobra"
)

var (
	pointsFile     string
	wallsFile      string
	structuresFile string
	idField        string
	tableFile      string
	methodName     string
	numWorkers     int
	decimate       int
	allPoints      bool
	dsn            string
	noIndex        bool
)

var rootCmd = &cobra.Command{
	Use:   "pointclass",
	Short: "Classify point clouds by the polygons that contain them",
	Long: `Assigns the points of a survey point cloud to the wall and structure
polygons that contain them, then groups the classified points by a polygon
attribute for rendering.`,
	PersistentPreRunE: applyConfig,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify points and optionally save the per-polygon subsets",
	RunE:  runClassify,
}

var groupsCmd = &cobra.Command{
	Use:   "groups <tag>",
	Short: "Group classified points by a categorical attribute",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroups,
}

var scalarsCmd = &cobra.Command{
	Use:   "scalars <tag>",
	Short: "Map classified points to a numeric attribute and print the colorbar",
	Args:  cobra.ExactArgs(1),
	RunE:  runScalars,
}

var locateCmd = &cobra.Command{
	Use:   "locate <x> <y>",
	Short: "List the polygons containing a location",
	Args:  cobra.ExactArgs(2),
	RunE:  runLocate,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store the wall and structure polygons in PostGIS",
	RunE:  runImport,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the attribute tags of the table in use",
	RunE:  runTags,
}

var (
	saveDir    string
	loadDir    string
	jsonOutput bool
	limit      int
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&pointsFile, "points", "p", "", "Point cloud file (x y z [r g b] per line)")
	pf.StringVar(&wallsFile, "walls", "", "Wall polygons (.shp, .geojson)")
	pf.StringVar(&structuresFile, "structures", "", "Structure polygons (.shp, .geojson)")
	pf.StringVar(&idField, "id-field", "", "Shapefile field holding the polygon ID")
	pf.StringVar(&tableFile, "table", "", "YAML attribute table (default: built-in survey table)")
	pf.StringVarP(&methodName, "method", "m", "exact", "Classification method: bbox or exact")
	pf.IntVarP(&numWorkers, "workers", "w", 0, "Worker goroutines for exact containment (0: one per CPU)")
	pf.IntVar(&decimate, "decimate", config.DefaultDecimate, "Keep every n-th point")
	pf.BoolVar(&allPoints, "all", false, "Use every point, no decimation")
	pf.StringVar(&dsn, "dsn", "", "PostGIS connection string for polygon layers")
	pf.BoolVar(&noIndex, "no-index", false, "Scan all points for every polygon instead of using the R-tree")
	pf.AddGoFlagSet(flag.CommandLine)

	classifyCmd.Flags().StringVar(&saveDir, "save", "", "Directory to save per-layer snapshots into")
	classifyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Save snapshots as JSON instead of gob")

	for _, c := range []*cobra.Command{groupsCmd, scalarsCmd} {
		c.Flags().StringVar(&loadDir, "snapshots", "", "Directory of saved snapshots to reuse")
	}

	locateCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of polygons to display")
	locateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	rootCmd.AddCommand(classifyCmd, groupsCmd, scalarsCmd, locateCmd, importCmd, tagsCmd)
}

// applyConfig fills flags that were not given from the environment
func applyConfig(cmd *cobra.Command, args []string) error {
	// glog reads its flags from the standard flag set
	if err := flag.CommandLine.Parse(nil); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("workers") {
		numWorkers = cfg.Workers
	}
	if !flags.Changed("method") {
		methodName = cfg.Method
	}
	if !flags.Changed("dsn") {
		dsn = cfg.DSN
	}
	if !flags.Changed("table") {
		tableFile = cfg.Table
	}
	if !flags.Changed("decimate") {
		decimate = cfg.Decimate
	}

	if _, err := classify.ParseMethod(methodName); err != nil {
		return err
	}
	glog.V(1).Infof("method=%s workers=%d decimate=%d", methodName, numWorkers, decimate)
	return nil
}

func main() {
	flag.Set("logtostderr", "true")
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}
