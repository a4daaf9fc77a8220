package preview

import (
	"image"
	"image/color"
	"math"
)

// screenPoint is a projected vertex: pixel position plus view depth
type screenPoint struct {
	X, Y, Z float64
}

// raster is a color buffer with a depth buffer
type raster struct {
	img   *image.RGBA
	depth []float64
	w, h  int
}

func newRaster(w, h int, background color.RGBA) *raster {
	r := &raster{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		depth: make([]float64, w*h),
		w:     w,
		h:     h,
	}
	for i := range r.depth {
		r.depth[i] = math.Inf(1)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.img.SetRGBA(x, y, background)
		}
	}
	return r
}

func edge(a, b screenPoint, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

// triangle fills a triangle with depth testing, sampling at pixel centers
func (r *raster) triangle(a, b, c screenPoint, col color.RGBA) {
	area := edge(a, b, c.X, c.Y)
	if math.Abs(area) < 1e-12 {
		return
	}

	minX := int(math.Max(0, math.Floor(math.Min(a.X, math.Min(b.X, c.X)))))
	maxX := int(math.Min(float64(r.w-1), math.Ceil(math.Max(a.X, math.Max(b.X, c.X)))))
	minY := int(math.Max(0, math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y)))))
	maxY := int(math.Min(float64(r.h-1), math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y)))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.Z + w1*b.Z + w2*c.Z
			idx := y*r.w + x
			if z < r.depth[idx] {
				r.depth[idx] = z
				r.img.SetRGBA(x, y, col)
			}
		}
	}
}

// line draws an overlay line with Bresenham's algorithm, ignoring depth
func (r *raster) line(x1, y1, x2, y2 int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		if x1 >= 0 && x1 < r.w && y1 >= 0 && y1 < r.h {
			r.img.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
