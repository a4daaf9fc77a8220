package app

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/goslice/pkg/geometry"
)

const (
	defaultDistance = 14
	defaultAngleX   = 0.15
	defaultAngleY   = 0
)

// resetCameraView resets the camera to the default view
func (app *App) resetCameraView() {
	app.Camera.distance = defaultDistance
	app.Camera.angleX = defaultAngleX
	app.Camera.angleY = defaultAngleY
	app.Camera.target = rl.Vector3{X: 0, Y: 2, Z: 0}
}

// updateCamera updates camera position based on angles
func (app *App) updateCamera() {
	c := &app.Camera
	x := c.distance * float32(math.Cos(float64(c.angleX))) * float32(math.Sin(float64(c.angleY)))
	y := c.distance * float32(math.Sin(float64(c.angleX)))
	z := c.distance * float32(math.Cos(float64(c.angleX))) * float32(math.Cos(float64(c.angleY)))

	c.camera.Position = rl.Vector3{X: c.target.X + x, Y: c.target.Y + y, Z: c.target.Z + z}
	c.camera.Target = c.target
}

func toVector3(v rl.Vector3) geometry.Vector3 {
	return geometry.NewVector3(float64(v.X), float64(v.Y), float64(v.Z))
}

func toRL(v geometry.Vector3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// bladePose places the blade tip where the mouse ray meets the z = 0 plane
// the fruit fly in, with the blade edge pointing along the view ray.
func (app *App) bladePose(mouse rl.Vector2) (geometry.Transform, bool) {
	ray := rl.GetScreenToWorldRay(mouse, app.Camera.camera)
	origin := toVector3(ray.Position)
	dir := toVector3(ray.Direction).Normalize()
	if math.Abs(dir.Z) < 1e-6 {
		return geometry.Transform{}, false
	}
	t := -origin.Z / dir.Z
	if t < 0 {
		return geometry.Transform{}, false
	}

	pose := geometry.IdentityTransform()
	pose.Position = origin.Add(dir.Mul(t))
	pose.Rotation = mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{dir.X, dir.Y, dir.Z})
	return pose, true
}

// modelMatrix converts a transform into a raylib matrix; both are column-major
func modelMatrix(t geometry.Transform) rl.Matrix {
	m := t.Matrix()
	return rl.Matrix{
		M0: float32(m[0]), M1: float32(m[1]), M2: float32(m[2]), M3: float32(m[3]),
		M4: float32(m[4]), M5: float32(m[5]), M6: float32(m[6]), M7: float32(m[7]),
		M8: float32(m[8]), M9: float32(m[9]), M10: float32(m[10]), M11: float32(m[11]),
		M12: float32(m[12]), M13: float32(m[13]), M14: float32(m[14]), M15: float32(m[15]),
	}
}
