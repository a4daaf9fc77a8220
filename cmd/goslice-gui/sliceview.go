package main

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/preview"
	"github.com/philipparndt/goslice/pkg/slicer"
)

// pieceGap is how far a fresh piece is pushed away from the cut
const pieceGap = 0.08

// part is one live mesh in the view: the whole object or a piece of it
type part struct {
	object *slicer.Object
	piece  *slicer.Piece
}

// SliceView shows an object and lets the user cut it by drawing strokes.
// In rotate mode dragging orbits the camera instead.
type SliceView struct {
	widget.BaseWidget

	slicer *slicer.Slicer
	skin   mesh.Color
	parts  []part
	camera *preview.Camera

	image  *canvas.Image
	stroke *canvas.Line

	dragStart *fyne.Position
	dragLast  fyne.Position
	sliceMode bool
	size      fyne.Size

	onCut func(results []*slicer.Result, err error)
}

// NewSliceView creates a view for obj. skin colors white surface materials.
func NewSliceView(s *slicer.Slicer, obj *slicer.Object, skin mesh.Color) *SliceView {
	v := &SliceView{
		slicer:    s,
		image:     canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
		stroke:    canvas.NewLine(color.RGBA{R: 255, G: 255, B: 255, A: 200}),
		sliceMode: true,
	}
	v.image.FillMode = canvas.ImageFillStretch
	v.image.ScaleMode = canvas.ImageScaleFastest
	v.stroke.StrokeWidth = 2
	v.stroke.Hide()
	v.SetObject(obj, skin)
	v.ExtendBaseWidget(v)
	return v
}

// SetObject replaces everything in the view with a fresh object
func (v *SliceView) SetObject(obj *slicer.Object, skin mesh.Color) {
	v.skin = skin
	v.parts = []part{{object: obj}}
	v.camera = preview.NewCamera(preview.Bounds(v.items()))
	v.render()
}

// SetSliceMode switches dragging between cutting and orbiting
func (v *SliceView) SetSliceMode(on bool) {
	v.sliceMode = on
}

// SetOnCut registers a callback invoked after every stroke
func (v *SliceView) SetOnCut(fn func(results []*slicer.Result, err error)) {
	v.onCut = fn
}

// PieceCount returns the number of live meshes
func (v *SliceView) PieceCount() int {
	return len(v.parts)
}

func (v *SliceView) items() []preview.Item {
	items := make([]preview.Item, 0, len(v.parts))
	var pieces []*slicer.Piece
	for _, p := range v.parts {
		if p.piece != nil {
			pieces = append(pieces, p.piece)
			continue
		}
		items = append(items, preview.ObjectItem(p.object, v.skin))
	}
	return append(items, preview.PieceItems(pieces, v.skin, 0)...)
}

func (v *SliceView) render() {
	if v.size.Width < 1 || v.size.Height < 1 {
		return
	}
	opts := preview.DefaultOptions()
	opts.Width, opts.Height = int(v.size.Width), int(v.size.Height)
	opts.Supersample = 1
	v.image.Image = preview.Render(v.items(), v.camera, opts)
	v.image.Refresh()
}

// Cut slices every live mesh along plane. Fresh pieces move apart a little
// along their impulse so the cut stays visible.
func (v *SliceView) Cut(plane geometry.Plane) ([]*slicer.Result, error) {
	var (
		next    []part
		results []*slicer.Result
	)
	for _, p := range v.parts {
		res, err := v.slicer.Slice(p.object, plane)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if !res.Cut() {
			next = append(next, p)
			continue
		}
		for _, piece := range res.Pieces() {
			piece.Transform.Position = piece.Transform.Position.Add(piece.Impulse.Mul(pieceGap))
			next = append(next, part{object: piece.Object(), piece: piece})
		}
	}
	v.parts = next
	v.render()
	return results, nil
}

// CreateRenderer creates the renderer for the widget
func (v *SliceView) CreateRenderer() fyne.WidgetRenderer {
	return &sliceViewRenderer{view: v}
}

// Dragged draws the stroke in slice mode and orbits otherwise
func (v *SliceView) Dragged(event *fyne.DragEvent) {
	if v.dragStart == nil {
		start := event.Position.Subtract(event.Dragged)
		v.dragStart = &start
	}
	if v.sliceMode {
		v.dragLast = event.Position
		v.stroke.Position1 = *v.dragStart
		v.stroke.Position2 = event.Position
		v.stroke.Show()
		v.stroke.Refresh()
		return
	}
	v.camera.Orbit(float64(event.Dragged.DY)*0.01, float64(-event.Dragged.DX)*0.01)
	v.render()
}

// DragEnd cuts along the finished stroke
func (v *SliceView) DragEnd() {
	start := v.dragStart
	v.dragStart = nil
	v.stroke.Hide()
	v.stroke.Refresh()
	if !v.sliceMode || start == nil {
		return
	}

	w, h := float64(v.size.Width), float64(v.size.Height)
	plane, err := v.camera.StrokePlane(float64(start.X), float64(start.Y), float64(v.dragLast.X), float64(v.dragLast.Y), w, h)
	if err != nil {
		return
	}
	results, err := v.Cut(plane)
	if v.onCut != nil {
		v.onCut(results, err)
	}
}

// Scrolled zooms the camera
func (v *SliceView) Scrolled(event *fyne.ScrollEvent) {
	v.camera.Zoom(-float64(event.Scrolled.DY) * 0.001)
	v.render()
}

// sliceViewRenderer implements fyne.WidgetRenderer
type sliceViewRenderer struct {
	view *SliceView
}

func (r *sliceViewRenderer) Layout(size fyne.Size) {
	r.view.image.Resize(size)
	r.view.image.Move(fyne.NewPos(0, 0))
	if size != r.view.size {
		r.view.size = size
		r.view.render()
	}
}

func (r *sliceViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *sliceViewRenderer) Refresh() {
	canvas.Refresh(r.view)
}

func (r *sliceViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.image, r.view.stroke}
}

func (r *sliceViewRenderer) Destroy() {}
