package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/pkg/fruit"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
	"github.com/philipparndt/goslice/version"
)

type App struct {
	window fyne.Window
	slicer *slicer.Slicer
	view   *SliceView
	info   *widget.Label

	// load recreates the current object for Reset
	load func() (*slicer.Object, mesh.Color, error)
}

func main() {
	logger, err := config.NewLogger(os.Stderr, os.Getenv("GOSLICE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("goslice " + version.GetVersion())

	opts := slicer.DefaultOptions()
	opts.Logger = logger
	appInstance := &App{
		window: w,
		slicer: slicer.New(opts),
		info:   widget.NewLabel(""),
	}

	source := "fruit:watermelon"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}
	if kind, ok := strings.CutPrefix(source, "fruit:"); ok {
		appInstance.load = func() (*slicer.Object, mesh.Color, error) { return loadFruit(kind) }
	} else {
		appInstance.load = func() (*slicer.Object, mesh.Color, error) { return loadSTL(source) }
	}

	obj, skin, err := appInstance.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", source, err)
		os.Exit(1)
	}
	appInstance.setupMainUI(obj, skin)

	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}

func loadFruit(kind string) (*slicer.Object, mesh.Color, error) {
	k, err := fruit.Lookup(kind)
	if err != nil {
		return nil, mesh.Color{}, err
	}
	obj, err := fruit.Generate(k.Name, fruit.Options{Cells: 32})
	if err != nil {
		return nil, mesh.Color{}, err
	}
	return obj, k.Skin, nil
}

func loadSTL(path string) (*slicer.Object, mesh.Color, error) {
	model, err := stl.Parse(path)
	if err != nil {
		return nil, mesh.Color{}, fmt.Errorf("failed to load STL file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &slicer.Object{
		Name:      name,
		Mesh:      model.ToMesh(),
		Transform: geometry.IdentityTransform(),
		Material:  mesh.BasicMaterial{Name: name, Color: mesh.White},
	}, mesh.RGB(0.7, 0.7, 0.75), nil
}

func (a *App) setupMainUI(obj *slicer.Object, skin mesh.Color) {
	a.view = NewSliceView(a.slicer, obj, skin)
	a.view.SetOnCut(a.updateInfo)

	fruitSelect := widget.NewSelect(fruit.Kinds(), func(kind string) {
		a.load = func() (*slicer.Object, mesh.Color, error) { return loadFruit(kind) }
		a.reset()
	})
	fruitSelect.PlaceHolder = "Pick a fruit"

	openButton := widget.NewButton("Open STL File", a.showFileDialog)
	resetButton := widget.NewButton("Reset", a.reset)

	sliceMode := widget.NewCheck("Slice mode (drag to cut)", a.view.SetSliceMode)
	sliceMode.SetChecked(true)

	help := widget.NewLabel("Drag across the object to cut it.\nUntick slice mode to rotate.\nScroll to zoom.")

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("goslice", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fruitSelect,
		openButton,
		resetButton,
		sliceMode,
		widget.NewSeparator(),
		a.info,
		widget.NewSeparator(),
		help,
	)

	a.info.SetText(describe(obj))
	split := container.NewHSplit(a.view, container.NewVScroll(sidebar))
	split.Offset = 0.75
	a.window.SetContent(split)
}

func (a *App) reset() {
	obj, skin, err := a.load()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.view.SetObject(obj, skin)
	a.info.SetText(describe(obj))
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		a.load = func() (*slicer.Object, mesh.Color, error) { return loadSTL(path) }
		a.reset()
	}, a.window)
}

func describe(obj *slicer.Object) string {
	return fmt.Sprintf("Object: %s\nTriangles: %d\nCollider: %s",
		obj.Name, obj.Mesh.TriangleCount(), slicer.ChooseCollider(obj.Mesh.BoundingBox()))
}

func (a *App) updateInfo(results []*slicer.Result, err error) {
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	loops, warnings, cut := 0, 0, 0
	for _, r := range results {
		loops += len(r.Loops)
		warnings += len(r.Warnings)
		if r.Cut() {
			cut++
		}
	}
	a.info.SetText(fmt.Sprintf("Pieces: %d\nMeshes cut by last stroke: %d\nCut loops: %d\nOpen loop warnings: %d",
		a.view.PieceCount(), cut, loops, warnings))
}
