package netgraph

import (
	"context"
	"errors"
	"fmt"

	"cdr.dev/slog"

	"github.com/recera/netviz/pkg/debug"
)

// Event is a gesture, window or protocol event consumed by Dispatch.
type Event interface {
	Kind() string
}

// Pan is a drag on empty canvas, in pixels.
type Pan struct{ DX, DY float64 }

// Zoom is a wheel step with the pointer position in surface pixels.
type Zoom struct{ Delta, X, Y float64 }

// Drag is a drag on an item, in pixels.
type Drag struct {
	UID    string
	DX, DY float64
}

// ResizeEdge is a resize handle move on an item.
type ResizeEdge struct {
	UID string
	Resize
}

// Toggle expands or collapses a network.
type Toggle struct{ UID string }

// Tap is a simple activation of an item.
type Tap struct{ UID string }

// WindowResize reports a new surface size.
type WindowResize struct{ Width, Height float64 }

// Create asks for a new item.
type Create struct{ Info Info }

// Remove deletes an item.
type Remove struct{ UID string }

// ResetView returns to the initial viewport.
type ResetView struct{}

// Focus centers an item at Scale; zero keeps the current zoom.
type Focus struct {
	UID   string
	Scale float64
}

// Fit fits every item inside the surface.
type Fit struct{ Padding float64 }

func (Pan) Kind() string          { return "pan" }
func (Zoom) Kind() string         { return "zoom" }
func (Drag) Kind() string         { return "drag" }
func (ResizeEdge) Kind() string   { return "resize" }
func (Toggle) Kind() string       { return "toggle" }
func (Tap) Kind() string          { return "tap" }
func (WindowResize) Kind() string { return "window_resize" }
func (Create) Kind() string       { return "create" }
func (Remove) Kind() string       { return "remove" }
func (ResetView) Kind() string    { return "reset" }
func (Focus) Kind() string        { return "focus" }
func (Fit) Kind() string          { return "fit" }

// Dispatch applies one event. Failures are logged to the context logger and
// returned; the controller keeps its last good geometry.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	if ev == nil {
		err := errors.New("nil event")
		debug.Warn(ctx, "event rejected", slog.Error(err))
		return err
	}
	err := c.apply(ctx, ev)
	if err != nil {
		fields := []slog.Field{slog.F("event", ev.Kind()), slog.Error(err)}
		if errors.Is(err, ErrUnknownItem) {
			debug.Warn(ctx, "event references missing item", fields...)
		} else {
			debug.Warn(ctx, "event rejected", fields...)
		}
	}
	return err
}

func (c *Controller) apply(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case Pan:
		return c.Pan(ev.DX, ev.DY)
	case Zoom:
		return c.Zoom(ev.Delta, ev.X, ev.Y)
	case Drag:
		return c.DragItem(ev.UID, ev.DX, ev.DY)
	case ResizeEdge:
		return c.ResizeItem(ev.UID, ev.Resize)
	case Toggle:
		return c.ToggleNetwork(ev.UID)
	case Tap:
		return c.Tap(ev.UID)
	case WindowResize:
		return c.SetSurface(Surface{Width: ev.Width, Height: ev.Height})
	case Create:
		replaced, err := c.CreateItem(ev.Info)
		if replaced {
			debug.Debug(ctx, "item replaced", slog.F("uid", ev.Info.UID))
		}
		return err
	case Remove:
		return c.RemoveItem(ev.UID)
	case ResetView:
		return c.Reset()
	case Focus:
		return c.FocusItem(ev.UID, ev.Scale)
	case Fit:
		return c.Fit(ev.Padding)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}
