package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/goslice/version"
)

var helpLines = []string{
	"Left drag: swing the blade",
	"Right drag: orbit, wheel: zoom",
	"Space: throw a fruit",
	"C: colliders  P: pause  Home: reset view",
	"H: toggle help",
}

// drawUI draws the status overlay in screen space
func (app *App) drawUI() {
	textColor := rl.NewColor(220, 220, 230, 255)
	dim := rl.NewColor(140, 140, 160, 255)

	pieces := 0
	for _, e := range app.Sandbox.Registry.Entities() {
		if e.Piece {
			pieces++
		}
	}

	rl.DrawText(fmt.Sprintf("Score: %d", app.Sandbox.Score), 16, 16, 28, rl.NewColor(255, 210, 80, 255))
	rl.DrawText(fmt.Sprintf("Objects: %d  Pieces: %d", app.Sandbox.Registry.Len(), pieces), 16, 50, 16, textColor)
	if app.UI.lastCut != "" {
		rl.DrawText(fmt.Sprintf("Last cut: %s (%d loops)", app.UI.lastCut, app.UI.lastLoops), 16, 70, 16, textColor)
	}
	if app.View.paused {
		rl.DrawText("PAUSED", int32(rl.GetScreenWidth())/2-50, 20, 28, rl.Red)
	}

	if app.View.showHelp {
		y := int32(rl.GetScreenHeight()) - int32(len(helpLines))*20 - 16
		for _, line := range helpLines {
			rl.DrawText(line, 16, y, 16, dim)
			y += 20
		}
	}

	v := version.GetVersion()
	rl.DrawText(v, int32(rl.GetScreenWidth())-rl.MeasureText(v, 14)-12, int32(rl.GetScreenHeight())-24, 14, dim)
}
