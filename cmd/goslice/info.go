package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipparndt/goslice/pkg/analysis"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a mesh",
	Long: `Show triangle and vertex counts, surface area, bounds, enclosed volume, edge
statistics, whether the mesh is closed and the collider a piece of this shape
would get. Accepts .stl, .stl.zst, .stl.sz, .scad and fruit:<kind>.`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	source := args[0]

	obj, _, err := loadSource(context.Background(), source, geometry.IdentityTransform())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", source, err)
		os.Exit(1)
	}

	result := analysis.AnalyzeMesh(obj.Mesh)

	fmt.Println("Mesh Information")
	fmt.Println("================")
	fmt.Printf("Name: %s\n", obj.Name)
	fmt.Printf("Source: %s\n\n", source)

	fmt.Println("Mesh Statistics:")
	fmt.Printf("  Triangles: %d\n", result.TriangleCount)
	fmt.Printf("  Vertices: %d\n", result.VertexCount)
	fmt.Printf("  Edges: %d\n", result.EdgeCount)
	fmt.Printf("  Open edges: %d\n", result.BoundaryEdges)
	fmt.Printf("  Closed: %t\n", result.Closed())
	fmt.Printf("  Surface Area: %.6f square units\n\n", result.SurfaceArea)

	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Printf("  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Printf("  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

	fmt.Println("Dimensions:")
	fmt.Printf("  Width (X): %.6f units\n", result.Dimensions.X)
	fmt.Printf("  Height (Y): %.6f units\n", result.Dimensions.Y)
	fmt.Printf("  Depth (Z): %.6f units\n", result.Dimensions.Z)
	fmt.Printf("  Diagonal: %.6f units\n", result.BoundingBox.Diagonal())
	fmt.Printf("  Volume: %.6f cubic units\n\n", result.Volume)

	fmt.Println("Edge Lengths:")
	fmt.Printf("  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Printf("  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Printf("  Average: %.6f units\n\n", result.AvgEdgeLength)

	fmt.Printf("Collider: %s\n", result.Collider)
}
