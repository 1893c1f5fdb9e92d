package netgraph

import (
	"fmt"
	"math"
)

// Controller owns the viewport state and every item of one diagram.
// It is not safe for concurrent use; all calls must come from one goroutine.
type Controller struct {
	opts    Options
	state   ViewportState
	surface Surface

	items map[string]*Item
	order []string
}

// NewController creates a controller for a surface of the given pixel size.
func NewController(surface Surface, opts *Options) *Controller {
	return &Controller{
		opts:    opts.withDefaults(),
		state:   InitialState(),
		surface: surface,
		items:   make(map[string]*Item),
	}
}

// Options returns the effective options after defaults.
func (c *Controller) Options() Options { return c.opts }

// State returns the current viewport state.
func (c *Controller) State() ViewportState { return c.state }

// Surface returns the current surface size.
func (c *Controller) Surface() Surface { return c.surface }

// Transform returns the transform for the current state and surface.
func (c *Controller) Transform() Transform {
	return Transform{State: c.state, Surface: c.surface}
}

// Len returns the number of items.
func (c *Controller) Len() int { return len(c.items) }

// Item looks up an item by uid.
func (c *Controller) Item(uid string) (*Item, bool) {
	it, ok := c.items[uid]
	return it, ok
}

// Items returns all items in creation order.
func (c *Controller) Items() []*Item {
	out := make([]*Item, 0, len(c.order))
	for _, uid := range c.order {
		out = append(out, c.items[uid])
	}
	return out
}

// CreateItem inserts an item and renders it under the current viewport.
// An item with the same uid is replaced in place; the replacement starts collapsed.
func (c *Controller) CreateItem(info Info) (replaced bool, err error) {
	if err := info.validate(); err != nil {
		return false, err
	}
	it := newItem(info, c.opts)
	if err := it.Redraw(c.Transform()); err != nil {
		return false, err
	}
	_, replaced = c.items[info.UID]
	if !replaced {
		c.order = append(c.order, info.UID)
	}
	c.items[info.UID] = it
	c.itemChanged(info.UID)
	return replaced, nil
}

// RemoveItem deletes an item. No message type triggers it yet.
func (c *Controller) RemoveItem(uid string) error {
	if _, ok := c.items[uid]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, uid)
	}
	delete(c.items, uid)
	for i, id := range c.order {
		if id == uid {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.itemChanged(uid)
	return nil
}

func (c *Controller) lookup(uid string) (*Item, error) {
	it, ok := c.items[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, uid)
	}
	return it, nil
}

// ToggleNetwork expands or collapses a network item.
func (c *Controller) ToggleNetwork(uid string) error {
	it, err := c.lookup(uid)
	if err != nil {
		return err
	}
	if err := it.ToggleExpansion(c.Transform()); err != nil {
		return err
	}
	c.itemChanged(uid)
	return nil
}

// Tap activates an item: networks toggle, other items ignore it.
func (c *Controller) Tap(uid string) error {
	it, err := c.lookup(uid)
	if err != nil {
		return err
	}
	if it.Type() != TypeNetwork {
		return nil
	}
	return c.ToggleNetwork(uid)
}

// DragItem moves one item by a pixel delta.
func (c *Controller) DragItem(uid string, dx, dy float64) error {
	it, err := c.lookup(uid)
	if err != nil {
		return err
	}
	if err := it.Drag(c.Transform(), dx, dy); err != nil {
		return err
	}
	c.itemChanged(uid)
	return nil
}

// ResizeItem applies a resize handle delta to one item.
func (c *Controller) ResizeItem(uid string, r Resize) error {
	it, err := c.lookup(uid)
	if err != nil {
		return err
	}
	if err := it.ResizeEdge(c.Transform(), r); err != nil {
		return err
	}
	c.itemChanged(uid)
	return nil
}

// Pan shifts the whole diagram by a pixel delta.
func (c *Controller) Pan(dx, dy float64) error {
	if !finite(dx, dy) {
		return fmt.Errorf("%w: pan", ErrNonFinite)
	}
	t := c.Transform()
	if !t.Invertible() {
		return ErrDegenerateSurface
	}
	next := c.state
	next.OffsetX += t.NormDX(dx)
	next.OffsetY += t.NormDY(dy)
	return c.setState(next)
}

// Zoom scales the diagram by one step around the pointer at (px, py).
// A positive delta zooms in, a negative one zooms out and zero is ignored.
// The model point under the pointer keeps its pixel position.
func (c *Controller) Zoom(delta, px, py float64) error {
	if !finite(delta, px, py) {
		return fmt.Errorf("%w: zoom", ErrNonFinite)
	}
	if delta == 0 {
		return nil
	}
	if !c.Transform().Invertible() {
		return ErrDegenerateSurface
	}
	factor := c.opts.ZoomStep
	if delta < 0 {
		factor = 1 / factor
	}
	old := c.state.Scale
	scale := c.clampScale(old * factor)
	if scale == old {
		return nil
	}

	w, h := c.surface.Width, c.surface.Height
	fx, fy := px/w, py/h
	dw := w*scale - w*old
	dh := h*scale - h*old

	next := c.state
	next.Scale = scale
	next.OffsetX -= fx * dw / (w * old * scale)
	next.OffsetY -= fy * dh / (h * old * scale)
	return c.setState(next)
}

// SetSurface records a new container size. The viewport state is untouched;
// every item re-applies its own position and size.
func (c *Controller) SetSurface(s Surface) error {
	if !finite(s.Width, s.Height) || s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("%w: %gx%g", ErrDegenerateSurface, s.Width, s.Height)
	}
	if err := c.checkAll(Transform{State: c.state, Surface: s}); err != nil {
		return err
	}
	c.surface = s
	return c.redrawAll()
}

// Reset returns to the initial view.
func (c *Controller) Reset() error {
	return c.setState(InitialState())
}

// FocusItem centers an item on the surface at the given scale.
// A non-positive scale keeps the current zoom.
func (c *Controller) FocusItem(uid string, scale float64) error {
	it, err := c.lookup(uid)
	if err != nil {
		return err
	}
	if !finite(scale) {
		return fmt.Errorf("%w: focus scale", ErrNonFinite)
	}
	if scale <= 0 {
		scale = c.state.Scale
	}
	scale = c.clampScale(scale)
	x, y := it.Pos()
	return c.setState(ViewportState{
		Scale:   scale,
		OffsetX: 0.5/scale - x,
		OffsetY: 0.5/scale - y,
	})
}

// Fit zooms and pans so every item fits inside the surface minus padding pixels.
func (c *Controller) Fit(padding float64) error {
	if len(c.items) == 0 {
		return c.Reset()
	}
	if !finite(padding) {
		return fmt.Errorf("%w: fit padding", ErrNonFinite)
	}
	if !c.Transform().Invertible() {
		return ErrDegenerateSurface
	}
	minx, miny := math.Inf(1), math.Inf(1)
	maxx, maxy := math.Inf(-1), math.Inf(-1)
	for _, it := range c.items {
		x, y := it.Pos()
		w, h := it.Size()
		minx = math.Min(minx, x-math.Abs(w))
		miny = math.Min(miny, y-math.Abs(h))
		maxx = math.Max(maxx, x+math.Abs(w))
		maxy = math.Max(maxy, y+math.Abs(h))
	}
	gw, gh := maxx-minx, maxy-miny
	if gw <= 0 {
		gw = 1
	}
	if gh <= 0 {
		gh = 1
	}
	sx := (c.surface.Width - 2*padding) / (gw * c.surface.Width)
	sy := (c.surface.Height - 2*padding) / (gh * c.surface.Height)
	s := math.Min(sx, sy)
	if s <= 0 {
		s = 1
	}
	s = c.clampScale(s)
	return c.setState(ViewportState{
		Scale:   s,
		OffsetX: 0.5/s - (minx + gw/2),
		OffsetY: 0.5/s - (miny + gh/2),
	})
}

func (c *Controller) clampScale(s float64) float64 {
	return math.Max(c.opts.MinScale, math.Min(c.opts.MaxScale, s))
}

// setState commits a new viewport before any item is redrawn.
func (c *Controller) setState(next ViewportState) error {
	if !(Transform{State: next, Surface: c.surface}).Valid() {
		return fmt.Errorf("%w: scale %g offset (%g, %g)", ErrDegenerateSurface, next.Scale, next.OffsetX, next.OffsetY)
	}
	if err := c.checkAll(Transform{State: next, Surface: c.surface}); err != nil {
		return err
	}
	c.state = next
	if c.opts.OnViewportChange != nil {
		c.opts.OnViewportChange(c.state)
	}
	return c.redrawAll()
}

// checkAll reports whether every item stays drawable under t.
// A viewport change is rejected as a whole when any item would overflow.
func (c *Controller) checkAll(t Transform) error {
	for _, uid := range c.order {
		it := c.items[uid]
		if _, err := it.layout(t, it.pos, it.size); err != nil {
			return fmt.Errorf("redraw %s: %w", uid, err)
		}
	}
	return nil
}

func (c *Controller) redrawAll() error {
	t := c.Transform()
	for _, uid := range c.order {
		if err := c.items[uid].Redraw(t); err != nil {
			return fmt.Errorf("redraw %s: %w", uid, err)
		}
		c.itemChanged(uid)
	}
	return nil
}

func (c *Controller) itemChanged(uid string) {
	if c.opts.OnItemChange != nil {
		c.opts.OnItemChange(uid)
	}
}
