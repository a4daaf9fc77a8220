package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// trailLength is the number of tip positions kept for the blade trail
const trailLength = 16

// handleInput processes keyboard and mouse input
func (app *App) handleInput() {
	// Left mouse draws the blade, right mouse orbits
	app.Blade.drawn = rl.IsMouseButtonDown(rl.MouseLeftButton)

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		app.Camera.angleY -= delta.X * 0.005
		app.Camera.angleX += delta.Y * 0.005
		if app.Camera.angleX > 1.5 {
			app.Camera.angleX = 1.5
		}
		if app.Camera.angleX < -1.5 {
			app.Camera.angleX = -1.5
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		app.Camera.distance -= wheel * 0.8
		if app.Camera.distance < 3 {
			app.Camera.distance = 3
		}
		if app.Camera.distance > 60 {
			app.Camera.distance = 60
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeyC):
		app.View.showColliders = !app.View.showColliders
	case rl.IsKeyPressed(rl.KeyP):
		app.View.paused = !app.View.paused
	case rl.IsKeyPressed(rl.KeyH):
		app.View.showHelp = !app.View.showHelp
	case rl.IsKeyPressed(rl.KeyHome):
		app.resetCameraView()
	case rl.IsKeyPressed(rl.KeySpace):
		if e := app.Sandbox.Spawn(); e != nil {
			app.logger.Debug("spawned", "id", e.ID, "name", e.Object.Name)
		}
	}
}

// pushTrail appends a tip position, dropping the oldest beyond trailLength
func (app *App) pushTrail(p rl.Vector3) {
	app.Blade.trail = append(app.Blade.trail, p)
	if n := len(app.Blade.trail); n > trailLength {
		app.Blade.trail = append(app.Blade.trail[:0], app.Blade.trail[n-trailLength:]...)
	}
}
