// Package svg renders diagram items as an SVG document.
package svg

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/recera/netviz/pkg/netgraph"
	"github.com/recera/netviz/pkg/renderer/style"
)

// Renderer writes SVG markup. The first write error sticks and is reported by Render.
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Render writes a full document for items drawn on surface.
func (r *Renderer) Render(surface netgraph.Surface, items []*netgraph.Item) error {
	r.printf(`<svg xmlns="http://www.w3.org/2000/svg" class="netgraph" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(surface.Width), num(surface.Height), num(surface.Width), num(surface.Height))
	r.printf(`<rect width="100%%" height="100%%" fill="%s"/>`+"\n", style.Background.Hex())
	for _, it := range items {
		r.item(it)
	}
	r.printf("</svg>\n")
	return r.err
}

func (r *Renderer) item(it *netgraph.Item) {
	g := it.Geometry()
	classes := []string{string(it.Type())}
	if g.Expanded {
		classes = append(classes, "expanded")
	}
	r.printf(`<g id="%s" class="%s" transform="%s">`+"\n",
		html.EscapeString(it.UID()), strings.Join(classes, " "), translate(g.Center.X, g.Center.Y))

	fill := style.Hex(it.Type(), g.Expanded)
	stroke := style.Stroke.Hex()
	switch g.Shape {
	case netgraph.ShapeEllipse:
		rx, ry := g.ShapeSize()
		r.printf(`<ellipse cx="0" cy="0" rx="%s" ry="%s" fill="%s" stroke="%s"/>`+"\n",
			num(rx), num(ry), fill, stroke)
	default:
		w, h := g.ShapeSize()
		off := g.ShapeTranslate()
		corner := ""
		if g.Shape == netgraph.ShapeRoundedRect {
			corner = fmt.Sprintf(` rx="%s" ry="%s"`, num(g.Radius), num(g.Radius))
		}
		r.printf(`<rect transform="%s" width="%s" height="%s"%s fill="%s" stroke="%s"/>`+"\n",
			translate(off.X, off.Y), num(w), num(h), corner, fill, stroke)
	}

	labelTransform := ""
	if g.LabelOffset != 0 {
		labelTransform = fmt.Sprintf(` transform="%s"`, translate(0, g.LabelOffset))
	}
	r.printf(`<text text-anchor="middle" dominant-baseline="middle" fill="%s"%s>%s</text>`+"\n",
		style.Label.Hex(), labelTransform, html.EscapeString(it.Label()))
	r.printf("</g>\n")
}

// RenderToString renders items into a string.
func RenderToString(surface netgraph.Surface, items []*netgraph.Item) (string, error) {
	var sb strings.Builder
	err := NewRenderer(&sb).Render(surface, items)
	return sb.String(), err
}

func translate(x, y float64) string {
	return "translate(" + num(x) + ", " + num(y) + ")"
}

// num formats with up to three decimals and no trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
