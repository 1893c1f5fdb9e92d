package netgraph

import "fmt"

// ShapeKind is the primitive an item is drawn with.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeRoundedRect
	ShapeEllipse
)

func shapeFor(t ItemType) ShapeKind {
	switch t {
	case TypeNetwork:
		return ShapeRoundedRect
	case TypeEnsemble:
		return ShapeEllipse
	default:
		return ShapeRect
	}
}

// Point is a pixel position on the surface.
type Point struct {
	X float64
	Y float64
}

// Geometry is the pixel state of an item after its last update.
// Renderers draw from it and never recompute coordinates themselves.
type Geometry struct {
	// Center is the group translate: the item center in surface pixels.
	Center Point
	Shape  ShapeKind
	// HalfWidth and HalfHeight are the half-extents after the pixel floor.
	HalfWidth  float64
	HalfHeight float64
	// Radius is the corner radius of rounded rectangles.
	Radius float64
	// LabelOffset is the downward label translate, non-zero only while expanded.
	LabelOffset float64
	Expanded    bool
}

// ShapeTranslate is the offset applied to the shape inside its group.
// Rectangles are shifted so their center lands on the group origin.
func (g Geometry) ShapeTranslate() Point {
	if g.Shape == ShapeEllipse {
		return Point{}
	}
	return Point{X: -g.HalfWidth, Y: -g.HalfHeight}
}

// ShapeSize is width/height for rectangles and rx/ry for ellipses.
func (g Geometry) ShapeSize() (float64, float64) {
	if g.Shape == ShapeEllipse {
		return g.HalfWidth, g.HalfHeight
	}
	return 2 * g.HalfWidth, 2 * g.HalfHeight
}

// Bounds returns the top-left and bottom-right corners in surface pixels.
func (g Geometry) Bounds() (Point, Point) {
	return Point{X: g.Center.X - g.HalfWidth, Y: g.Center.Y - g.HalfHeight},
		Point{X: g.Center.X + g.HalfWidth, Y: g.Center.Y + g.HalfHeight}
}

// Contains reports whether the pixel p falls inside the rendered shape.
func (g Geometry) Contains(p Point) bool {
	dx := p.X - g.Center.X
	dy := p.Y - g.Center.Y
	if g.Shape == ShapeEllipse {
		if g.HalfWidth == 0 || g.HalfHeight == 0 {
			return false
		}
		nx, ny := dx/g.HalfWidth, dy/g.HalfHeight
		return nx*nx+ny*ny <= 1
	}
	return dx >= -g.HalfWidth && dx <= g.HalfWidth && dy >= -g.HalfHeight && dy <= g.HalfHeight
}

// Resize is the change of an item's bounding box reported by a resize handle,
// in pixels. Left and Top move with the left and top edges.
type Resize struct {
	Width  float64
	Height float64
	Left   float64
	Top    float64
}

// Item is one diagram entity. Items are owned by a Controller.
type Item struct {
	uid      string
	typ      ItemType
	label    string
	pos      [2]float64
	size     [2]float64
	expanded bool

	minWidth  float64
	minHeight float64
	radius    float64

	geom Geometry
}

func newItem(info Info, o Options) *Item {
	it := &Item{
		uid:       info.UID,
		typ:       info.Type,
		label:     info.Label,
		pos:       info.Pos,
		size:      info.Size,
		minWidth:  o.MinWidth,
		minHeight: o.MinHeight,
	}
	it.geom.Shape = shapeFor(info.Type)
	if it.geom.Shape == ShapeRoundedRect {
		it.radius = o.NetworkRadius
	}
	return it
}

func (it *Item) UID() string          { return it.uid }
func (it *Item) Type() ItemType       { return it.typ }
func (it *Item) Label() string        { return it.label }
func (it *Item) Pos() (x, y float64)  { return it.pos[0], it.pos[1] }
func (it *Item) Size() (w, h float64) { return it.size[0], it.size[1] }
func (it *Item) Expanded() bool       { return it.expanded }
func (it *Item) Geometry() Geometry   { return it.geom }

// Info returns the item's current description.
func (it *Item) Info() Info {
	return Info{UID: it.uid, Type: it.typ, Pos: it.pos, Size: it.size, Label: it.label}
}

// layout computes the geometry of pos and size under t without storing it.
// Pixels that overflow are rejected so no infinity reaches a renderer.
func (it *Item) layout(t Transform, pos, size [2]float64) (Geometry, error) {
	if !finite(pos[0], pos[1], size[0], size[1]) {
		return Geometry{}, fmt.Errorf("%w: %s", ErrNonFinite, it.uid)
	}
	if !t.Valid() {
		return Geometry{}, ErrDegenerateSurface
	}
	g := it.geom
	g.Center = Point{X: t.ScreenX(pos[0]), Y: t.ScreenY(pos[1])}
	g.HalfWidth, g.HalfHeight = it.halfExtents(t, size)
	g.Radius = it.radius
	g.Expanded = it.expanded
	g.LabelOffset = 0
	if it.expanded {
		g.LabelOffset = g.HalfHeight
	}
	if !finite(g.Center.X, g.Center.Y, g.HalfWidth, g.HalfHeight) {
		return Geometry{}, fmt.Errorf("%w: pixels of %s overflow", ErrNonFinite, it.uid)
	}
	return g, nil
}

// apply commits pos and size once their geometry is known to be drawable.
func (it *Item) apply(t Transform, pos, size [2]float64) error {
	g, err := it.layout(t, pos, size)
	if err != nil {
		return err
	}
	it.pos, it.size, it.geom = pos, size, g
	return nil
}

// SetPosition stores a new center and recomputes the group translate.
func (it *Item) SetPosition(t Transform, x, y float64) error {
	if !finite(x, y) {
		return fmt.Errorf("%w: position of %s", ErrNonFinite, it.uid)
	}
	return it.apply(t, [2]float64{x, y}, it.size)
}

// SetSize stores new half-extents and recomputes the shape.
func (it *Item) SetSize(t Transform, w, h float64) error {
	if !finite(w, h) {
		return fmt.Errorf("%w: size of %s", ErrNonFinite, it.uid)
	}
	return it.apply(t, it.pos, [2]float64{w, h})
}

func (it *Item) halfExtents(t Transform, size [2]float64) (float64, float64) {
	hw := t.ScreenWidth(size[0])
	hh := t.ScreenHeight(size[1])
	if hw < it.minWidth {
		hw = it.minWidth
	}
	if hh < it.minHeight {
		hh = it.minHeight
	}
	return hw, hh
}

// Redraw re-applies the stored position and size under t.
func (it *Item) Redraw(t Transform) error {
	return it.apply(t, it.pos, it.size)
}

// ToggleExpansion flips the expanded state of a network item.
func (it *Item) ToggleExpansion(t Transform) error {
	if it.typ != TypeNetwork {
		return fmt.Errorf("%w: %s is %s", ErrNotExpandable, it.uid, it.typ)
	}
	if !t.Valid() {
		return ErrDegenerateSurface
	}
	it.expanded = !it.expanded
	if err := it.Redraw(t); err != nil {
		it.expanded = !it.expanded
		return err
	}
	return nil
}

// Drag moves the item by a pixel delta measured at the current zoom.
func (it *Item) Drag(t Transform, dx, dy float64) error {
	if !finite(dx, dy) {
		return fmt.Errorf("%w: drag of %s", ErrNonFinite, it.uid)
	}
	if !t.Invertible() {
		return ErrDegenerateSurface
	}
	return it.SetPosition(t, it.pos[0]+t.NormDX(dx), it.pos[1]+t.NormDY(dy))
}

// ResizeEdge applies a resize handle delta. Growth on one edge contributes
// half to the half-extent and shifts the center by the same half, so the
// opposite edge stays where it was.
func (it *Item) ResizeEdge(t Transform, r Resize) error {
	if !finite(r.Width, r.Height, r.Left, r.Top) {
		return fmt.Errorf("%w: resize of %s", ErrNonFinite, it.uid)
	}
	if !t.Invertible() {
		return ErrDegenerateSurface
	}
	hw := t.NormDX(r.Width) / 2
	hh := t.NormDY(r.Height) / 2
	size := [2]float64{it.size[0] + hw, it.size[1] + hh}
	pos := [2]float64{it.pos[0] + hw + t.NormDX(r.Left), it.pos[1] + hh + t.NormDY(r.Top)}
	return it.apply(t, pos, size)
}
