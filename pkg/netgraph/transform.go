package netgraph

// ViewportState is the global pan and zoom of one diagram.
// Offsets are in normalized model units, not pixels.
type ViewportState struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// InitialState is the view before any pan or zoom.
func InitialState() ViewportState {
	return ViewportState{Scale: 1}
}

// Surface is the pixel size of the container the diagram is drawn into.
type Surface struct {
	Width  float64
	Height float64
}

// Transform maps normalized model coordinates to surface pixels.
// It holds no references and is safe to copy.
type Transform struct {
	State   ViewportState
	Surface Surface
}

// Valid reports whether t maps model coordinates to finite pixels.
// A zero sized surface is valid; it only collapses geometry onto the origin.
func (t Transform) Valid() bool {
	return t.State.Scale > 0 &&
		t.Surface.Width >= 0 && t.Surface.Height >= 0 &&
		finite(t.State.Scale, t.State.OffsetX, t.State.OffsetY, t.Surface.Width, t.Surface.Height)
}

// Invertible reports whether pixel deltas can be converted back to model units.
func (t Transform) Invertible() bool {
	return t.Valid() && t.Surface.Width > 0 && t.Surface.Height > 0
}

// ScaledWidth is the pixel width of the unit square at the current zoom.
func (t Transform) ScaledWidth() float64 { return t.Surface.Width * t.State.Scale }

// ScaledHeight is the pixel height of the unit square at the current zoom.
func (t Transform) ScaledHeight() float64 { return t.Surface.Height * t.State.Scale }

// ScreenX maps a model x coordinate to a pixel column.
func (t Transform) ScreenX(x float64) float64 {
	return (x + t.State.OffsetX) * t.ScaledWidth()
}

// ScreenY maps a model y coordinate to a pixel row.
func (t Transform) ScreenY(y float64) float64 {
	return (y + t.State.OffsetY) * t.ScaledHeight()
}

// ScreenWidth maps a horizontal model magnitude to pixels.
func (t Transform) ScreenWidth(s float64) float64 {
	return s * t.Surface.Width * t.State.Scale
}

// ScreenHeight maps a vertical model magnitude to pixels.
func (t Transform) ScreenHeight(s float64) float64 {
	return s * t.Surface.Height * t.State.Scale
}

// ModelX is the inverse of ScreenX.
func (t Transform) ModelX(px float64) float64 {
	return px/t.ScaledWidth() - t.State.OffsetX
}

// ModelY is the inverse of ScreenY.
func (t Transform) ModelY(py float64) float64 {
	return py/t.ScaledHeight() - t.State.OffsetY
}

// NormDX converts a horizontal pixel delta to model units.
func (t Transform) NormDX(dx float64) float64 { return dx / t.ScaledWidth() }

// NormDY converts a vertical pixel delta to model units.
func (t Transform) NormDY(dy float64) float64 { return dy / t.ScaledHeight() }
