package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

// PieceReport summarizes one piece of a slice
type PieceReport struct {
	Name          string
	SurfaceArea   float64
	CapArea       float64
	Volume        float64
	Triangles     int
	CapTriangles  int
	BoundaryEdges int
	Collider      slicer.Collider
}

// SliceReport checks a slice result against its source mesh
type SliceReport struct {
	Source       string
	SourceArea   float64
	Pieces       []PieceReport
	Segments     int
	Loops        []int
	Degenerate   int
	Warnings     []string
	AreaError    float64
	RelAreaError float64
}

// Conserved reports whether the piece surfaces add up to the source surface
func (r *SliceReport) Conserved(tolerance float64) bool {
	return r.RelAreaError <= tolerance
}

// Watertight reports whether every piece is closed
func (r *SliceReport) Watertight() bool {
	for _, p := range r.Pieces {
		if p.BoundaryEdges != 0 {
			return false
		}
	}
	return true
}

// AnalyzeSlice measures the pieces of res produced from source
func AnalyzeSlice(source *mesh.Mesh, res *slicer.Result) *SliceReport {
	report := &SliceReport{
		Source:     source.Name,
		SourceArea: source.SurfaceArea(-1),
		Segments:   res.Segments,
		Degenerate: res.DegenerateTriangles,
	}
	for _, l := range res.Loops {
		report.Loops = append(report.Loops, l.Len())
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}

	total := 0.0
	for _, p := range res.Pieces() {
		pr := PieceReport{
			Name:          p.Name,
			SurfaceArea:   p.Mesh.SurfaceArea(slicer.SurfaceSubmesh),
			CapArea:       p.Mesh.SurfaceArea(slicer.CapSubmesh),
			Volume:        EnclosedVolume(p.Mesh),
			Triangles:     p.Mesh.TriangleCount(),
			BoundaryEdges: BoundaryEdges(p.Mesh),
			Collider:      p.Collider,
		}
		if len(p.Mesh.Submeshes) > slicer.CapSubmesh {
			pr.CapTriangles = len(p.Mesh.Submeshes[slicer.CapSubmesh]) / 3
		}
		total += pr.SurfaceArea
		report.Pieces = append(report.Pieces, pr)
	}

	report.AreaError = math.Abs(total - report.SourceArea)
	if report.SourceArea > 0 {
		report.RelAreaError = report.AreaError / report.SourceArea
	}
	return report
}

// Print writes a human readable report
func (r *SliceReport) Print(w io.Writer) {
	fmt.Fprintf(w, "Source: %s\n", r.Source)
	fmt.Fprintf(w, "  Surface area: %s\n", FormatMeasurement(r.SourceArea, "units²"))
	fmt.Fprintf(w, "  Cut segments: %d, loops: %v, degenerate triangles: %d\n", r.Segments, r.Loops, r.Degenerate)
	fmt.Fprintf(w, "  Area conservation error: %.3e (relative %.3e)\n", r.AreaError, r.RelAreaError)
	for _, p := range r.Pieces {
		fmt.Fprintf(w, "\n%s\n", p.Name)
		fmt.Fprintf(w, "  Triangles:     %d (%d cap)\n", p.Triangles, p.CapTriangles)
		fmt.Fprintf(w, "  Surface area:  %s\n", FormatMeasurement(p.SurfaceArea, "units²"))
		fmt.Fprintf(w, "  Cap area:      %s\n", FormatMeasurement(p.CapArea, "units²"))
		fmt.Fprintf(w, "  Volume:        %s\n", FormatMeasurement(p.Volume, "units³"))
		fmt.Fprintf(w, "  Open edges:    %d\n", p.BoundaryEdges)
		fmt.Fprintf(w, "  Collider:      %s\n", p.Collider)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "\nWarning: %s\n", warning)
	}
}
