// Package style holds the colors shared by the SVG, PNG and terminal renderers.
package style

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/recera/netviz/pkg/netgraph"
)

var (
	Background = colorful.Color{R: 1, G: 1, B: 1}
	Stroke     = mustHex("#333333")
	Label      = mustHex("#111111")

	fills = map[netgraph.ItemType]colorful.Color{
		netgraph.TypeNode:     colorful.Hcl(250, 0.25, 0.85),
		netgraph.TypeNetwork:  colorful.Hcl(140, 0.20, 0.90),
		netgraph.TypeEnsemble: colorful.Hcl(40, 0.30, 0.85),
	}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Fill is the shape fill of an item. Expanded networks are drawn lighter
// so their contents read on top of them.
func Fill(t netgraph.ItemType, expanded bool) colorful.Color {
	c, ok := fills[t]
	if !ok {
		c = colorful.Color{R: 0.8, G: 0.8, B: 0.8}
	}
	if expanded {
		c = c.BlendLab(Background, 0.6)
	}
	return c.Clamped()
}

// Hex is Fill as a #rrggbb string.
func Hex(t netgraph.ItemType, expanded bool) string {
	return Fill(t, expanded).Hex()
}
