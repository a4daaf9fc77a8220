// Package app runs the interactive slicing sandbox on raylib. Game state
// lives in internal/scene; this package only draws it and feeds it input.
package app

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/pkg/fruit"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/version"
)

// Options configure the sandbox window
type Options struct {
	// Kinds lists the fruit to throw; the whole catalogue when empty
	Kinds []string
	// Cells is the marching cubes resolution of every fruit
	Cells int
	// Scale sizes the fruit, which are about one unit across at 1
	Scale  float64
	Seed   uint64
	Width  int32
	Height int32
	Logger *slog.Logger
}

// Run opens the sandbox window and blocks until it is closed
func Run(opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Width <= 0 {
		opts.Width = 1400
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}

	templates, skins, err := buildTemplates(opts)
	if err != nil {
		return err
	}

	s := slicer.New(slicer.Options{Logger: logger})
	app := &App{
		Sandbox: scene.NewSandbox(s, templates, opts.Seed, logger),
		skins:   skins,
		pieces:  make(map[scene.ID]*mesh.Mesh),
		logger:  logger,
	}
	app.View.showHelp = true

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(opts.Width, opts.Height, "GoSlice "+version.GetVersion())
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	app.Meshes = newMeshCache()
	defer app.unloadAll()

	app.Camera.camera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
	app.resetCameraView()

	logger.Info("sandbox started", "kinds", len(templates))
	for !rl.WindowShouldClose() {
		app.handleInput()
		app.updateCamera()
		if !app.View.paused {
			app.step(rl.GetFrameTime())
		}
		app.draw()
	}
	logger.Info("sandbox closed", "score", app.Sandbox.Score)
	return nil
}

func buildTemplates(opts Options) (map[string]*slicer.Object, map[string]mesh.Color, error) {
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = fruit.Kinds()
	}
	templates := make(map[string]*slicer.Object, len(kinds))
	skins := make(map[string]mesh.Color, len(kinds))
	for _, name := range kinds {
		k, err := fruit.Lookup(name)
		if err != nil {
			return nil, nil, err
		}
		obj, err := fruit.Generate(k.Name, fruit.Options{Cells: opts.Cells, Scale: opts.Scale})
		if err != nil {
			return nil, nil, fmt.Errorf("generating %s: %w", k.Name, err)
		}
		templates[k.Name] = obj
		skins[k.Name] = k.Skin
	}
	return templates, skins, nil
}

// step advances the sandbox one frame
func (app *App) step(dt float32) {
	pose, ok := app.bladePose(rl.GetMousePosition())
	cutting := ok && app.Blade.drawn

	events, gone := app.Sandbox.Update(float64(dt), pose, cutting)
	for _, ev := range events {
		for _, p := range ev.Pieces {
			app.pieces[p.ID] = p.Object.Mesh
		}
		app.UI.lastCut = ev.Name
		app.UI.lastLoops = len(ev.Result.Loops)
		for _, w := range ev.Result.Warnings {
			app.logger.Warn("slice warning", "name", ev.Name, "err", w)
		}
	}
	for _, id := range gone {
		if m, ok := app.pieces[id]; ok {
			app.release(m)
			delete(app.pieces, id)
		}
	}

	if cutting {
		app.pushTrail(toRL(pose.Position))
	} else {
		app.Blade.trail = app.Blade.trail[:0]
	}
}

func (app *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(15, 18, 25, 255))

	rl.BeginMode3D(app.Camera.camera)
	app.drawEntities()
	app.drawBlade()
	rl.EndMode3D()

	app.drawUI()
	rl.EndDrawing()
}

// unloadAll frees every uploaded mesh
func (app *App) unloadAll() {
	for m := range app.Meshes.meshes {
		app.release(m)
	}
	rl.UnloadMaterial(app.Meshes.material)
}
