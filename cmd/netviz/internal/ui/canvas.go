package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/netviz/pkg/netgraph"
	"github.com/recera/netviz/pkg/renderer/style"
)

type cell struct {
	r  rune
	fg string
	bg string
}

// canvas rasterizes item geometry onto terminal cells, one pixel per cell.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

func (c *canvas) drawItems(items []*netgraph.Item) {
	stroke := style.Stroke.Hex()
	for _, it := range items {
		c.drawItem(it, stroke)
	}
}

func (c *canvas) drawItem(it *netgraph.Item, stroke string) {
	g := it.Geometry()
	fill := style.Hex(it.Type(), it.Expanded())
	lo, hi := g.Bounds()

	x0 := max(int(math.Floor(lo.X)), 0)
	y0 := max(int(math.Floor(lo.Y)), 0)
	x1 := min(int(math.Ceil(hi.X)), c.w)
	y1 := min(int(math.Ceil(hi.Y)), c.h)
	inside := func(x, y int) bool { return g.Contains(cellCenter(x, y)) }

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if !inside(x, y) {
				continue
			}
			cl := c.at(x, y)
			cl.bg = fill
			cl.fg = stroke
			cl.r = borderRune(g.Shape,
				!inside(x-1, y), !inside(x+1, y), !inside(x, y-1), !inside(x, y+1))
		}
	}

	label := []rune(it.Label())
	if len(label) == 0 {
		return
	}
	ly := int(math.Floor(g.Center.Y + g.LabelOffset))
	lx := int(math.Round(g.Center.X)) - len(label)/2
	for i, r := range label {
		cl := c.at(lx+i, ly)
		if cl == nil {
			continue
		}
		cl.r = r
		cl.fg = style.Label.Hex()
	}
}

func borderRune(shape netgraph.ShapeKind, left, right, top, bottom bool) rune {
	if shape == netgraph.ShapeEllipse {
		if left || right || top || bottom {
			return '•'
		}
		return ' '
	}
	rounded := shape == netgraph.ShapeRoundedRect
	switch {
	case top && left:
		if rounded {
			return '╭'
		}
		return '┌'
	case top && right:
		if rounded {
			return '╮'
		}
		return '┐'
	case bottom && left:
		if rounded {
			return '╰'
		}
		return '└'
	case bottom && right:
		if rounded {
			return '╯'
		}
		return '┘'
	case top || bottom:
		return '─'
	case left || right:
		return '│'
	}
	return ' '
}

// String renders the canvas, one styled run per color change.
func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		row := c.cells[y*c.w : (y+1)*c.w]
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg && row[x].bg == row[start].bg {
				continue
			}
			b.WriteString(renderRun(row[start:x]))
			start = x
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderRun(run []cell) string {
	rs := make([]rune, len(run))
	for i, cl := range run {
		rs[i] = cl.r
	}
	s := lipgloss.NewStyle()
	if run[0].fg != "" {
		s = s.Foreground(lipgloss.Color(run[0].fg))
	}
	if run[0].bg != "" {
		s = s.Background(lipgloss.Color(run[0].bg))
	}
	return s.Render(string(rs))
}
