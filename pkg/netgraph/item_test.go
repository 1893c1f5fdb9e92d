package netgraph

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func newTestItem(t *testing.T, typ ItemType, tr Transform) *Item {
	t.Helper()
	opts := (*Options)(nil).withDefaults()
	it := newItem(Info{UID: "x", Type: typ, Pos: [2]float64{0.5, 0.5}, Size: [2]float64{0.1, 0.05}, Label: "X"}, opts)
	require.NoError(t, it.Redraw(tr))
	return it
}

func view(scale float64) Transform {
	return Transform{State: ViewportState{Scale: scale}, Surface: Surface{Width: 800, Height: 600}}
}

func TestItemShapes(t *testing.T) {
	tr := view(1)

	rect := newTestItem(t, TypeNode, tr).Geometry()
	assert.Equal(t, ShapeRect, rect.Shape)
	assert.Equal(t, Point{X: -80, Y: -30}, roundPoint(rect.ShapeTranslate()))
	w, h := rect.ShapeSize()
	assert.InDelta(t, 160, w, eps)
	assert.InDelta(t, 60, h, eps)

	net := newTestItem(t, TypeNetwork, tr).Geometry()
	assert.Equal(t, ShapeRoundedRect, net.Shape)
	assert.Equal(t, 15.0, net.Radius)

	ens := newTestItem(t, TypeEnsemble, tr).Geometry()
	assert.Equal(t, ShapeEllipse, ens.Shape)
	assert.Equal(t, Point{}, ens.ShapeTranslate())
	rx, ry := ens.ShapeSize()
	assert.InDelta(t, 80, rx, eps)
	assert.InDelta(t, 30, ry, eps)
}

func roundPoint(p Point) Point {
	return Point{X: math.Round(p.X*1e6) / 1e6, Y: math.Round(p.Y*1e6) / 1e6}
}

func TestItemSizeFloor(t *testing.T) {
	for _, scale := range []float64{1e-3, 1e-9, math.SmallestNonzeroFloat64} {
		it := newTestItem(t, TypeEnsemble, view(scale))
		g := it.Geometry()
		assert.GreaterOrEqual(t, g.HalfWidth, 5.0, "scale %g", scale)
		assert.GreaterOrEqual(t, g.HalfHeight, 5.0, "scale %g", scale)
	}

	// Tiny stored sizes are floored too, and the stored size is untouched.
	it := newTestItem(t, TypeNode, view(1))
	require.NoError(t, it.SetSize(view(1), 0.001, 0))
	g := it.Geometry()
	assert.Equal(t, 5.0, g.HalfWidth)
	assert.Equal(t, 5.0, g.HalfHeight)
	w, h := it.Size()
	assert.Equal(t, 0.001, w)
	assert.Equal(t, 0.0, h)
}

func TestItemSetPositionRejectsNonFinite(t *testing.T) {
	it := newTestItem(t, TypeNode, view(1))
	before := it.Geometry()

	err := it.SetPosition(view(1), math.NaN(), 0)
	assert.True(t, errors.Is(err, ErrNonFinite))
	err = it.SetSize(view(1), 1, math.Inf(-1))
	assert.True(t, errors.Is(err, ErrNonFinite))
	err = it.Drag(view(1), math.Inf(1), 0)
	assert.True(t, errors.Is(err, ErrNonFinite))
	err = it.SetPosition(view(0), 0, 0)
	assert.True(t, errors.Is(err, ErrDegenerateSurface))

	assert.Equal(t, before, it.Geometry())
	x, y := it.Pos()
	assert.Equal(t, 0.5, x)
	assert.Equal(t, 0.5, y)
}

func TestItemDragScalesWithZoom(t *testing.T) {
	a := newTestItem(t, TypeNode, view(1))
	b := newTestItem(t, TypeNode, view(2))

	require.NoError(t, a.Drag(view(1), 40, 30))
	require.NoError(t, b.Drag(view(2), 40, 30))

	ax, ay := a.Pos()
	bx, by := b.Pos()
	assert.InDelta(t, 0.05, ax-0.5, eps)
	assert.InDelta(t, 0.05, ay-0.5, eps)
	assert.InDelta(t, (ax-0.5)/2, bx-0.5, eps)
	assert.InDelta(t, (ay-0.5)/2, by-0.5, eps)
}

func TestItemResizeKeepsOppositeEdge(t *testing.T) {
	tr := Transform{State: ViewportState{Scale: 1.3, OffsetX: 0.1, OffsetY: -0.05}, Surface: Surface{Width: 800, Height: 600}}

	t.Run("right edge", func(t *testing.T) {
		it := newTestItem(t, TypeNode, tr)
		left, _ := it.Geometry().Bounds()
		require.NoError(t, it.ResizeEdge(tr, Resize{Width: 37}))
		left2, right2 := it.Geometry().Bounds()
		assert.InDelta(t, left.X, left2.X, eps)
		assert.InDelta(t, left.X+2*0.1*800*1.3+37, right2.X, 1e-6)
	})

	t.Run("left edge", func(t *testing.T) {
		it := newTestItem(t, TypeNode, tr)
		_, right := it.Geometry().Bounds()
		require.NoError(t, it.ResizeEdge(tr, Resize{Width: 25, Left: -25}))
		_, right2 := it.Geometry().Bounds()
		assert.InDelta(t, right.X, right2.X, eps)
	})

	t.Run("bottom edge", func(t *testing.T) {
		it := newTestItem(t, TypeEnsemble, tr)
		top, _ := it.Geometry().Bounds()
		require.NoError(t, it.ResizeEdge(tr, Resize{Height: -12}))
		top2, _ := it.Geometry().Bounds()
		assert.InDelta(t, top.Y, top2.Y, eps)
	})

	t.Run("top edge", func(t *testing.T) {
		it := newTestItem(t, TypeNetwork, tr)
		_, bottom := it.Geometry().Bounds()
		require.NoError(t, it.ResizeEdge(tr, Resize{Height: 18, Top: -18}))
		_, bottom2 := it.Geometry().Bounds()
		assert.InDelta(t, bottom.Y, bottom2.Y, eps)
	})
}

func TestItemToggleExpansion(t *testing.T) {
	tr := view(1)
	it := newTestItem(t, TypeNetwork, tr)
	before := it.Geometry()

	require.NoError(t, it.ToggleExpansion(tr))
	g := it.Geometry()
	assert.True(t, it.Expanded())
	assert.True(t, g.Expanded)
	assert.InDelta(t, 30, g.LabelOffset, eps)

	// The label follows the shape while expanded.
	require.NoError(t, it.SetSize(tr, 0.1, 0.1))
	assert.InDelta(t, 60, it.Geometry().LabelOffset, eps)
	require.NoError(t, it.SetSize(tr, 0.1, 0.05))

	require.NoError(t, it.ToggleExpansion(tr))
	assert.False(t, it.Expanded())
	assert.Equal(t, before, it.Geometry())
}

func TestItemToggleRejectsLeaves(t *testing.T) {
	for _, typ := range []ItemType{TypeNode, TypeEnsemble} {
		it := newTestItem(t, typ, view(1))
		err := it.ToggleExpansion(view(1))
		assert.True(t, errors.Is(err, ErrNotExpandable), "%s: %v", typ, err)
		assert.False(t, it.Expanded())
	}
}

func TestGeometryContains(t *testing.T) {
	rect := Geometry{Center: Point{X: 100, Y: 100}, HalfWidth: 10, HalfHeight: 5, Shape: ShapeRect}
	assert.True(t, rect.Contains(Point{X: 109, Y: 104}))
	assert.False(t, rect.Contains(Point{X: 111, Y: 100}))

	ens := Geometry{Center: Point{X: 0, Y: 0}, HalfWidth: 10, HalfHeight: 10, Shape: ShapeEllipse}
	assert.True(t, ens.Contains(Point{X: 7, Y: 7}))
	assert.False(t, ens.Contains(Point{X: 8, Y: 8}))
}

func TestItemRejectsOverflowingPixels(t *testing.T) {
	it := newTestItem(t, TypeNode, view(1))
	before := it.Geometry()

	// Finite model values whose pixels overflow.
	err := it.SetPosition(view(1), 1e307, 0.5)
	assert.True(t, errors.Is(err, ErrNonFinite))
	err = it.SetSize(view(1), 0.1, 1e307)
	assert.True(t, errors.Is(err, ErrNonFinite))

	assert.Equal(t, before, it.Geometry())
	x, y := it.Pos()
	assert.Equal(t, [2]float64{0.5, 0.5}, [2]float64{x, y})
	w, h := it.Size()
	assert.Equal(t, [2]float64{0.1, 0.05}, [2]float64{w, h})
}

func TestItemRejectedResizeKeepsState(t *testing.T) {
	tiny := Transform{State: ViewportState{Scale: 1}, Surface: Surface{Width: 1, Height: 1}}
	opts := (*Options)(nil).withDefaults()
	it := newItem(Info{UID: "b", Type: TypeNode, Pos: [2]float64{1.7e308, 0.5}, Size: [2]float64{0.1, 0.1}}, opts)
	require.NoError(t, it.Redraw(tiny))
	before := it.Geometry()

	err := it.ResizeEdge(tiny, Resize{Width: 1e308})
	assert.True(t, errors.Is(err, ErrNonFinite))

	w, h := it.Size()
	assert.Equal(t, 0.1, w)
	assert.Equal(t, 0.1, h)
	x, y := it.Pos()
	assert.Equal(t, 1.7e308, x)
	assert.Equal(t, 0.5, y)
	assert.Equal(t, before, it.Geometry())
}
