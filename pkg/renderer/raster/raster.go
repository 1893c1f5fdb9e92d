// Package raster draws diagram items into a bitmap with gg.
package raster

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/recera/netviz/pkg/netgraph"
	"github.com/recera/netviz/pkg/renderer/style"
)

// FontSize is the label size in points at 72 DPI.
const FontSize = 12.0

// Draw renders items onto a new image the size of surface.
func Draw(surface netgraph.Surface, items []*netgraph.Item) (image.Image, error) {
	w := int(math.Ceil(surface.Width))
	h := int(math.Ceil(surface.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", netgraph.ErrDegenerateSurface, surface.Width, surface.Height)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(style.Background)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, it := range items {
		drawItem(dc, it)
	}
	return dc.Image(), nil
}

// WritePNG renders items and encodes them as PNG.
func WritePNG(w io.Writer, surface netgraph.Surface, items []*netgraph.Item) error {
	img, err := Draw(surface, items)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

func drawItem(dc *gg.Context, it *netgraph.Item) {
	g := it.Geometry()
	dc.Push()
	defer dc.Pop()

	dc.Translate(g.Center.X, g.Center.Y)
	switch g.Shape {
	case netgraph.ShapeEllipse:
		rx, ry := g.ShapeSize()
		dc.DrawEllipse(0, 0, rx, ry)
	case netgraph.ShapeRoundedRect:
		off := g.ShapeTranslate()
		w, h := g.ShapeSize()
		dc.DrawRoundedRectangle(off.X, off.Y, w, h, g.Radius)
	default:
		off := g.ShapeTranslate()
		w, h := g.ShapeSize()
		dc.DrawRectangle(off.X, off.Y, w, h)
	}
	dc.SetColor(style.Fill(it.Type(), g.Expanded))
	dc.FillPreserve()
	dc.SetColor(style.Stroke)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.SetColor(style.Label)
	dc.DrawStringAnchored(it.Label(), 0, g.LabelOffset, 0.5, 0.5)
}
