package app

import (
	"math"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/goslice/internal/scene"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

// lightDir is fixed in object space, so lighting turns with a spinning piece
var lightDir = geometry.NewVector3(-0.5, -1.0, -0.5).Normalize()

func newMeshCache() MeshCache {
	return MeshCache{
		meshes:   make(map[*mesh.Mesh][]GPUMesh),
		material: rl.LoadMaterialDefault(),
	}
}

// submeshToRaylib converts one submesh to a raylib mesh with baked lighting.
// Flat submeshes (caps) keep their color unshaded.
func submeshToRaylib(m *mesh.Mesh, submesh int, base mesh.Color, flat bool) rl.Mesh {
	tris := m.Triangles(submesh)
	vertexCount := len(tris) * 3

	out := rl.Mesh{
		VertexCount:   int32(vertexCount),
		TriangleCount: int32(len(tris)),
	}
	vertices := make([]float32, vertexCount*3)
	normals := make([]float32, vertexCount*3)
	colors := make([]uint8, vertexCount*4)

	idx := 0
	for _, tri := range tris {
		normal := tri.CalculateNormal()
		intensity := 1.0
		if !flat {
			intensity = math.Max(0.3, -normal.Dot(lightDir))
		}
		r, g, b, _ := mesh.RGB(base.R*intensity, base.G*intensity, base.B*intensity).RGBA8()

		for _, v := range [3]geometry.Vector3{tri.V1, tri.V2, tri.V3} {
			vertices[idx*3+0] = float32(v.X)
			vertices[idx*3+1] = float32(v.Y)
			vertices[idx*3+2] = float32(v.Z)
			normals[idx*3+0] = float32(normal.X)
			normals[idx*3+1] = float32(normal.Y)
			normals[idx*3+2] = float32(normal.Z)
			colors[idx*4+0] = r
			colors[idx*4+1] = g
			colors[idx*4+2] = b
			colors[idx*4+3] = 255
			idx++
		}
	}

	if vertexCount > 0 {
		out.Vertices = &vertices[0]
		out.Normals = &normals[0]
		out.Colors = &colors[0]
		rl.UploadMesh(&out, false)
	}
	return out
}

// colorsFor resolves the surface and cap colors of an entity
func (app *App) colorsFor(e *scene.Entity) (surface, capColor mesh.Color) {
	surface = mesh.Gray
	if bc, ok := e.Object.Material.(mesh.BaseColorer); ok {
		if c, ok := bc.BaseColor(); ok {
			surface = c
		}
	}
	if surface.IsNearWhite() {
		if skin, ok := app.skins[kindOf(e.Object.Name)]; ok {
			surface = skin
		}
	}
	capColor = slicer.CapColor(nil, e.Object.Material, e.Object.Name)
	return surface, capColor
}

// kindOf strips piece suffixes from a name
func kindOf(name string) string {
	kind, _, _ := strings.Cut(name, "_Slice")
	return kind
}

// upload returns the GPU meshes of an entity, uploading them on first use
func (app *App) upload(e *scene.Entity) []GPUMesh {
	m := e.Object.Mesh
	if cached, ok := app.Meshes.meshes[m]; ok {
		return cached
	}
	surface, capColor := app.colorsFor(e)
	var gpu []GPUMesh
	for s := range m.Submeshes {
		if s == slicer.CapSubmesh && e.Piece {
			gpu = append(gpu, GPUMesh{mesh: submeshToRaylib(m, s, capColor, true), submesh: s})
			continue
		}
		gpu = append(gpu, GPUMesh{mesh: submeshToRaylib(m, s, surface, false), submesh: s})
	}
	app.Meshes.meshes[m] = gpu
	return gpu
}

// release frees the GPU meshes of despawned pieces. Fruit templates stay
// cached since every spawned fruit of a kind shares them.
func (app *App) release(m *mesh.Mesh) {
	for _, g := range app.Meshes.meshes[m] {
		if g.mesh.VertexCount > 0 {
			rl.UnloadMesh(&g.mesh)
		}
	}
	delete(app.Meshes.meshes, m)
}

// drawEntities draws every live entity with its world transform
func (app *App) drawEntities() {
	for _, e := range app.Sandbox.Registry.Entities() {
		matrix := modelMatrix(e.Object.Transform)
		for _, g := range app.upload(e) {
			if g.mesh.VertexCount == 0 {
				continue
			}
			rl.DrawMesh(g.mesh, app.Meshes.material, matrix)
		}
		if app.View.showColliders {
			app.drawCollider(e)
		}
	}
}

// drawCollider outlines the collider chosen for an entity
func (app *App) drawCollider(e *scene.Entity) {
	c := e.Collider
	center := toRL(e.Object.Transform.TransformPoint(c.Center))
	col := rl.NewColor(80, 220, 120, 180)
	switch c.Shape {
	case slicer.ColliderSphere:
		rl.DrawSphereWires(center, float32(c.Radius), 8, 8, col)
	case slicer.ColliderCapsule:
		axis := geometry.Vector3{}
		switch c.Axis {
		case 0:
			axis.X = 1
		case 1:
			axis.Y = 1
		default:
			axis.Z = 1
		}
		half := axis.Mul(math.Max(c.Height/2-c.Radius, 0))
		local := func(p geometry.Vector3) rl.Vector3 { return toRL(e.Object.Transform.TransformPoint(p)) }
		rl.DrawCapsuleWires(local(c.Center.Sub(half)), local(c.Center.Add(half)), float32(c.Radius), 8, 4, col)
	default:
		rl.DrawCubeWiresV(center, toRL(c.Size), col)
	}
}

// drawBlade draws the blade trail
func (app *App) drawBlade() {
	trail := app.Blade.trail
	for i := 1; i < len(trail); i++ {
		alpha := uint8(255 * i / len(trail))
		rl.DrawLine3D(trail[i-1], trail[i], rl.NewColor(230, 240, 255, alpha))
	}
}
