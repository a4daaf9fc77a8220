package app

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/pkg/mesh"
)

// CameraState holds all camera-related state
type CameraState struct {
	camera   rl.Camera3D
	distance float32
	angleX   float32
	angleY   float32
	target   rl.Vector3
}

// BladeState holds the blade as driven by the mouse
type BladeState struct {
	drawn bool
	// trail holds the recent tip positions, oldest first
	trail []rl.Vector3
}

// GPUMesh is one uploaded submesh
type GPUMesh struct {
	mesh    rl.Mesh
	submesh int
}

// MeshCache uploads meshes once and frees piece meshes when they despawn
type MeshCache struct {
	meshes   map[*mesh.Mesh][]GPUMesh
	material rl.Material
}

// ViewSettings holds display settings
type ViewSettings struct {
	showColliders bool
	showHelp      bool
	paused        bool
}

// UIState holds the last cut for the status line
type UIState struct {
	lastCut   string
	lastLoops int
}

// App is the interactive slicing sandbox
type App struct {
	Camera  CameraState
	Blade   BladeState
	Meshes  MeshCache
	View    ViewSettings
	UI      UIState
	Sandbox *scene.Sandbox

	skins map[string]mesh.Color
	// pieces maps live pieces to their meshes so they can be freed on despawn
	pieces map[scene.ID]*mesh.Mesh
	logger *slog.Logger
}
