package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/pkg/analysis"
	"github.com/philipparndt/goslice/pkg/fruit"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
)

// planRun is the outcome of executing a plan
type planRun struct {
	Pieces  []*slicer.Piece
	Reports []*analysis.SliceReport
	Files   []string
}

// executePlan loads the plan's source, applies every cut in order to every
// live piece and writes the final pieces. Reports go to w.
func executePlan(ctx context.Context, plan *config.Plan, w io.Writer) (*planRun, error) {
	var (
		obj *slicer.Object
		err error
	)
	if plan.Fruit != "" {
		obj, _, err = loadFruit(plan.Fruit, fruit.DefaultCells, plan.ObjectTransform())
	} else {
		obj, err = loadObject(ctx, plan.InputPath(), plan.ObjectTransform())
	}
	if err != nil {
		return nil, err
	}

	opts := plan.SlicerOptions()
	opts.Logger = logger
	s := slicer.New(opts)

	run := &planRun{}
	live := []*slicer.Object{obj}
	for _, cut := range plan.Cuts {
		plane, err := cut.Plane()
		if err != nil {
			return nil, fmt.Errorf("cut %s: %w", cut.Name, err)
		}

		var next []*slicer.Object
		run.Pieces = nil
		for _, o := range live {
			res, err := s.Slice(o, plane)
			if err != nil {
				return nil, fmt.Errorf("cut %s of %s: %w", cut.Name, o.Name, err)
			}
			report := analysis.AnalyzeSlice(o.Mesh, res)
			run.Reports = append(run.Reports, report)
			fmt.Fprintf(w, "== %s ==\n", cut.Name)
			report.Print(w)
			fmt.Fprintln(w)

			for _, p := range res.Pieces() {
				run.Pieces = append(run.Pieces, p)
				next = append(next, p.Object())
			}
		}
		live = next
	}

	files, err := writePieces(plan.OutputDir(), run.Pieces, plan.Format(), plan.Compression())
	if err != nil {
		return nil, err
	}
	run.Files = files
	for _, f := range files {
		fmt.Fprintf(w, "Wrote %s\n", f)
	}
	return run, nil
}

// pieceFilename turns a piece name into a file name
func pieceFilename(name string, c stl.Compression) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
	return clean + ".stl" + c.Extension()
}

// writePieces writes each piece in world space into dir
func writePieces(dir string, pieces []*slicer.Piece, format stl.Format, c stl.Compression) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	files := make([]string, 0, len(pieces))
	for _, p := range pieces {
		path := filepath.Join(dir, pieceFilename(p.Name, c))
		model := stl.FromMesh(p.Mesh, -1, p.Transform)
		if err := stl.Save(path, model, format); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.Name, err)
		}
		logger.Debug("wrote piece", "path", path, "triangles", model.TriangleCount())
		files = append(files, path)
	}
	return files, nil
}
