package netgraph

import "fmt"

// ItemType selects the shape primitive and behavior of a diagram item.
type ItemType string

const (
	TypeNode     ItemType = "node"
	TypeNetwork  ItemType = "net"
	TypeEnsemble ItemType = "ens"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case TypeNode, TypeNetwork, TypeEnsemble:
		return true
	}
	return false
}

// Info describes an item as announced by the remote publisher.
type Info struct {
	UID   string
	Type  ItemType
	Pos   [2]float64
	Size  [2]float64
	Label string
}

func (i Info) validate() error {
	if i.UID == "" {
		return fmt.Errorf("%w: empty uid", ErrInvalidInfo)
	}
	if !i.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInfo, i.Type)
	}
	if !finite(i.Pos[0], i.Pos[1], i.Size[0], i.Size[1]) {
		return fmt.Errorf("%w: item %s", ErrNonFinite, i.UID)
	}
	return nil
}

// Options configures the controller behavior
type Options struct {
	// Minimum rendered half-extent in pixels
	MinWidth  float64 // default 5
	MinHeight float64 // default 5

	// Viewport
	ZoomStep float64 // default 1.1
	MinScale float64 // default 0.01
	MaxScale float64 // default 100

	// Corner radius of network rectangles, in pixels
	NetworkRadius float64 // default 15

	// Change callbacks (optional)
	OnViewportChange func(state ViewportState)
	OnItemChange     func(uid string)
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinWidth:      5,
		MinHeight:     5,
		ZoomStep:      1.1,
		MinScale:      0.01,
		MaxScale:      100,
		NetworkRadius: 15,
	}
	if o == nil {
		return d
	}
	if o.MinWidth > 0 {
		d.MinWidth = o.MinWidth
	}
	if o.MinHeight > 0 {
		d.MinHeight = o.MinHeight
	}
	if o.ZoomStep > 1 {
		d.ZoomStep = o.ZoomStep
	}
	if o.MinScale > 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale > 0 {
		d.MaxScale = o.MaxScale
	}
	if d.MaxScale < d.MinScale {
		d.MaxScale = d.MinScale
	}
	if o.NetworkRadius > 0 {
		d.NetworkRadius = o.NetworkRadius
	}
	d.OnViewportChange = o.OnViewportChange
	d.OnItemChange = o.OnItemChange
	return d
}
