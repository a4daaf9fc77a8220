package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipparndt/goslice/pkg/analysis"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	edgesCount     int
	edgesLongest   bool
	edgesShortest  bool
	edgesMinLength float64
	edgesMaxLength float64
)

var edgesCmd = &cobra.Command{
	Use:   "edges [file]",
	Short: "List the edges of a mesh by length",
	Long: `List the longest or shortest edges of a mesh, or those within a length range.
Run it on written pieces to spot sliver triangles left by a cut.`,
	Args: cobra.ExactArgs(1),
	Run:  runEdges,
}

func init() {
	edgesCmd.Flags().IntVarP(&edgesCount, "count", "n", 10, "Number of edges to display")
	edgesCmd.Flags().BoolVarP(&edgesLongest, "longest", "l", false, "Show longest edges")
	edgesCmd.Flags().BoolVarP(&edgesShortest, "shortest", "s", false, "Show shortest edges")
	edgesCmd.Flags().Float64Var(&edgesMinLength, "min", 0.0, "Minimum edge length filter")
	edgesCmd.Flags().Float64Var(&edgesMaxLength, "max", 0.0, "Maximum edge length filter")
	rootCmd.AddCommand(edgesCmd)
}

// selectEdges picks the edges to print and a title for them
func selectEdges(result *analysis.MeshReport) ([]analysis.EdgeInfo, string) {
	var edges []analysis.EdgeInfo
	var title string
	switch {
	case edgesLongest:
		edges = analysis.FindLongestEdges(result, edgesCount)
		title = fmt.Sprintf("Top %d Longest Edges", len(edges))
	case edgesShortest:
		edges = analysis.FindShortestEdges(result, edgesCount)
		title = fmt.Sprintf("Top %d Shortest Edges", len(edges))
	case edgesMaxLength > 0:
		edges = analysis.FindEdgesByLength(result, edgesMinLength, edgesMaxLength)
		title = fmt.Sprintf("Edges between %.6f and %.6f units (found %d)", edgesMinLength, edgesMaxLength, len(edges))
	default:
		edges = result.AllEdges
		title = fmt.Sprintf("All Edges (showing first %d of %d)", min(edgesCount, len(edges)), len(edges))
	}
	if len(edges) > edgesCount {
		edges = edges[:edgesCount]
	}
	return edges, title
}

func runEdges(cmd *cobra.Command, args []string) {
	source := args[0]

	obj, _, err := loadSource(context.Background(), source, geometry.IdentityTransform())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", source, err)
		os.Exit(1)
	}

	result := analysis.AnalyzeMesh(obj.Mesh)
	edges, title := selectEdges(result)

	fmt.Println(title)
	fmt.Println("====================")
	fmt.Printf("Total edges in mesh: %d\n", result.EdgeCount)
	fmt.Printf("Min edge length: %s\n", analysis.FormatMeasurement(result.MinEdgeLength, ""))
	fmt.Printf("Max edge length: %s\n", analysis.FormatMeasurement(result.MaxEdgeLength, ""))
	fmt.Printf("Avg edge length: %s\n\n", analysis.FormatMeasurement(result.AvgEdgeLength, ""))

	if len(edges) == 0 {
		fmt.Println("No edges found matching the criteria.")
		return
	}
	fmt.Printf("%-6s %-35s %-35s %-15s\n", "Index", "Start", "End", "Length")
	fmt.Println("-----------------------------------------------------------------------------------------------------------")
	for i, edge := range edges {
		fmt.Printf("%-6d %-35s %-35s %-15.6f\n",
			i+1,
			analysis.FormatVector(edge.Start),
			analysis.FormatVector(edge.End),
			edge.Length)
	}
}
