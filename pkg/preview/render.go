// Package preview renders meshes and slice results into still images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

// Item is one mesh placed in the preview scene
type Item struct {
	Label     string
	Mesh      *mesh.Mesh
	Transform geometry.Transform
	// Offset moves the item in world space, used to pull pieces apart
	Offset geometry.Vector3
	// Colors holds one color per submesh
	Colors []mesh.Color
	// Flat marks submeshes drawn without lighting
	Flat []bool
}

// Options control rendering
type Options struct {
	Width, Height int
	// Supersample renders at a multiple of the output size and downscales
	Supersample int
	Background  color.RGBA
	Light       geometry.Vector3
	// Loops are drawn as outlines on top of the shaded image
	Loops   []slicer.Loop
	Caption string
}

// DefaultOptions returns a 640x480 render with 2x supersampling
func DefaultOptions() Options {
	return Options{
		Width:       640,
		Height:      480,
		Supersample: 2,
		Background:  color.RGBA{R: 24, G: 26, B: 32, A: 255},
		Light:       geometry.NewVector3(-0.4, 1, 0.6),
	}
}

func colorOf(m mesh.Material, fallback mesh.Color) mesh.Color {
	if bc, ok := m.(mesh.BaseColorer); ok {
		if c, ok := bc.BaseColor(); ok {
			return c
		}
	}
	return fallback
}

// ObjectItem wraps an unsliced object; skin replaces a white material tint
func ObjectItem(obj *slicer.Object, skin mesh.Color) Item {
	c := colorOf(obj.Material, skin)
	if c.IsNearWhite() {
		c = skin
	}
	return Item{Label: obj.Name, Mesh: obj.Mesh, Transform: obj.Transform, Colors: []mesh.Color{c}}
}

// PieceItems turns slice pieces into items pushed apart along their impulse
func PieceItems(pieces []*slicer.Piece, skin mesh.Color, gap float64) []Item {
	items := make([]Item, 0, len(pieces))
	for _, p := range pieces {
		surface := colorOf(p.Materials[slicer.SurfaceSubmesh], skin)
		if surface.IsNearWhite() {
			surface = skin
		}
		items = append(items, Item{
			Label:     p.Name,
			Mesh:      p.Mesh,
			Transform: p.Transform,
			Offset:    p.Impulse.Mul(gap),
			Colors:    []mesh.Color{surface, colorOf(p.Materials[slicer.CapSubmesh], mesh.Gray)},
			Flat:      []bool{false, true},
		})
	}
	return items
}

// Bounds returns the world-space bounds of all items
func Bounds(items []Item) geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, it := range items {
		for _, p := range it.Mesh.Positions {
			bbox.Extend(it.Transform.TransformPoint(p).Add(it.Offset))
		}
	}
	return bbox
}

func shade(c mesh.Color, intensity float64) color.RGBA {
	r, g, b, _ := mesh.RGB(c.R*intensity, c.G*intensity, c.B*intensity).RGBA8()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Render draws the items as seen by cam
func Render(items []Item, cam *Camera, opts Options) *image.RGBA {
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	w, h := opts.Width*ss, opts.Height*ss
	fw, fh := float64(w), float64(h)
	r := newRaster(w, h, opts.Background)
	light := opts.Light.Normalize()

	project := func(p geometry.Vector3) screenPoint {
		x, y, z := cam.Project(p, fw, fh)
		return screenPoint{X: x, Y: y, Z: z}
	}

	for _, it := range items {
		for s, sub := range it.Mesh.Submeshes {
			col := mesh.Gray
			if s < len(it.Colors) {
				col = it.Colors[s]
			}
			flat := s < len(it.Flat) && it.Flat[s]

			for i := 0; i+2 < len(sub); i += 3 {
				a := it.Transform.TransformPoint(it.Mesh.Positions[sub[i]]).Add(it.Offset)
				b := it.Transform.TransformPoint(it.Mesh.Positions[sub[i+1]]).Add(it.Offset)
				c := it.Transform.TransformPoint(it.Mesh.Positions[sub[i+2]]).Add(it.Offset)

				intensity := 1.0
				if !flat {
					n := b.Sub(a).Cross(c.Sub(a)).Normalize()
					intensity = 0.25 + 0.75*math.Abs(n.Dot(light))
				}
				r.triangle(project(a), project(b), project(c), shade(col, intensity))
			}
		}
	}

	outline := color.RGBA{R: 255, G: 220, B: 60, A: 255}
	for _, loop := range opts.Loops {
		n := len(loop.Points)
		for i := 0; i < n; i++ {
			p0 := project(loop.Points[i])
			p1 := project(loop.Points[(i+1)%n])
			r.line(int(p0.X), int(p0.Y), int(p1.X), int(p1.Y), outline)
		}
	}

	img := r.img
	if ss > 1 {
		img = image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
		draw.CatmullRom.Scale(img, img.Bounds(), r.img, r.img.Bounds(), draw.Src, nil)
	}
	if opts.Caption != "" {
		drawCaption(img, opts.Caption)
	}
	return img
}

func drawCaption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 230, G: 230, B: 230, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(8), Y: fixed.I(8 + face.Metrics().Ascent.Ceil())},
	}
	d.DrawString(text)
}

// SavePNG writes img to path
func SavePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
