package ui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/netviz/pkg/netgraph"
)

type gestureKind int

const (
	gesturePan gestureKind = iota
	gestureDrag
	gestureResize
)

// Edges grabbed by a resize gesture.
type edges struct {
	left, right, top, bottom bool
}

// gesture is a left-button press in progress.
type gesture struct {
	kind  gestureKind
	uid   string
	edges edges
	lastX int
	lastY int
	moved bool
}

// cellCenter is the surface pixel at the middle of a terminal cell.
func cellCenter(x, y int) netgraph.Point {
	return netgraph.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

// hit returns the topmost item under cell (x, y) and the edges the cell lies on.
func hit(items []*netgraph.Item, x, y int) (*netgraph.Item, edges) {
	p := cellCenter(x, y)
	for i := len(items) - 1; i >= 0; i-- {
		g := items[i].Geometry()
		if !g.Contains(p) {
			continue
		}
		if g.Shape == netgraph.ShapeEllipse {
			return items[i], ellipseEdges(g, x, y)
		}
		var e edges
		lo, hi := g.Bounds()
		e.left = p.X-lo.X < 1
		e.right = hi.X-p.X < 1
		e.top = p.Y-lo.Y < 1
		e.bottom = hi.Y-p.Y < 1
		return items[i], e
	}
	return nil, edges{}
}

// ellipseEdges grabs the bounding box edge nearest to an outline cell.
// Interior cells grab nothing.
func ellipseEdges(g netgraph.Geometry, x, y int) edges {
	outline := !g.Contains(cellCenter(x-1, y)) || !g.Contains(cellCenter(x+1, y)) ||
		!g.Contains(cellCenter(x, y-1)) || !g.Contains(cellCenter(x, y+1))
	if !outline {
		return edges{}
	}
	p := cellCenter(x, y)
	nx := (p.X - g.Center.X) / g.HalfWidth
	ny := (p.Y - g.Center.Y) / g.HalfHeight
	if math.Abs(nx) >= math.Abs(ny) {
		return edges{left: nx < 0, right: nx >= 0}
	}
	return edges{top: ny < 0, bottom: ny >= 0}
}

func (e edges) any() bool { return e.left || e.right || e.top || e.bottom }

// resize converts a pointer move into a bounding box change for the grabbed edges.
func (e edges) resize(dx, dy float64) netgraph.Resize {
	var r netgraph.Resize
	switch {
	case e.right:
		r.Width = dx
	case e.left:
		r.Width = -dx
		r.Left = dx
	}
	switch {
	case e.bottom:
		r.Height = dy
	case e.top:
		r.Height = -dy
		r.Top = dy
	}
	return r
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= int(m.ctrl.Surface().Height) && m.gesture == nil {
		return
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.dispatch(netgraph.Zoom{Delta: 1, X: cellCenter(msg.X, msg.Y).X, Y: cellCenter(msg.X, msg.Y).Y})
		return
	case msg.Button == tea.MouseButtonWheelDown:
		m.dispatch(netgraph.Zoom{Delta: -1, X: cellCenter(msg.X, msg.Y).X, Y: cellCenter(msg.X, msg.Y).Y})
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		g := &gesture{kind: gesturePan, lastX: msg.X, lastY: msg.Y}
		if it, e := hit(m.ctrl.Items(), msg.X, msg.Y); it != nil {
			g.uid = it.UID()
			g.kind = gestureDrag
			if e.any() {
				g.kind = gestureResize
				g.edges = e
			}
		}
		m.gesture = g

	case tea.MouseActionMotion:
		g := m.gesture
		if g == nil {
			return
		}
		dx, dy := float64(msg.X-g.lastX), float64(msg.Y-g.lastY)
		if dx == 0 && dy == 0 {
			return
		}
		g.lastX, g.lastY = msg.X, msg.Y
		g.moved = true
		switch g.kind {
		case gesturePan:
			m.dispatch(netgraph.Pan{DX: dx, DY: dy})
		case gestureDrag:
			m.dispatch(netgraph.Drag{UID: g.uid, DX: dx, DY: dy})
		case gestureResize:
			m.dispatch(netgraph.ResizeEdge{UID: g.uid, Resize: g.edges.resize(dx, dy)})
		}

	case tea.MouseActionRelease:
		g := m.gesture
		m.gesture = nil
		if g != nil && !g.moved && g.uid != "" {
			m.dispatch(netgraph.Tap{UID: g.uid})
		}
	}
}
