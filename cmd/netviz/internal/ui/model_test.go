package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/netviz/pkg/debug"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(debug.Discard(context.Background()), "test", nil)
	// 80x24 canvas below two chrome rows.
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 26})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func frame(s string) FrameMsg { return FrameMsg(s) }

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWindowSizeSetsSurface(t *testing.T) {
	m := newTestModel(t)
	s := m.Controller().Surface()
	assert.Equal(t, 80.0, s.Width)
	assert.Equal(t, 24.0, s.Height)
}

func TestFramesCreateItems(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, frame(`{"type":"conn"}`))
	m = update(t, m, frame(`{"type":"node","uid":"a","pos":[0.5,0.5],"size":[0.1,0.1],"label":"alpha"}`))
	m = update(t, m, frame(`{"type":"node","uid":"bad"}`))

	require.Equal(t, 1, m.Controller().Len())
	it, ok := m.Controller().Item("a")
	require.True(t, ok)
	g := it.Geometry()
	assert.Equal(t, 40.0, g.Center.X)
	assert.Equal(t, 12.0, g.Center.Y)
	assert.InDelta(t, 8.0, g.HalfWidth, 1e-9)
	assert.InDelta(t, 2.4, g.HalfHeight, 1e-9)

	view := m.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "dropped 1")
}

func TestDragItem(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, frame(`{"type":"ens","uid":"a","pos":[0.5,0.5],"size":[0.1,0.1]}`))

	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 40, 12))
	m = update(t, m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 42, 12))
	m = update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 42, 12))

	it, _ := m.Controller().Item("a")
	x, y := it.Pos()
	assert.InDelta(t, 0.525, x, 1e-9)
	assert.InDelta(t, 0.5, y, 1e-9)
	assert.Equal(t, 1.0, m.Controller().State().Scale)
}

func TestPanOnEmptySpace(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 2, 2))
	m = update(t, m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 5, 3))
	m = update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 5, 3))

	state := m.Controller().State()
	assert.InDelta(t, 3.0/80, state.OffsetX, 1e-12)
	assert.InDelta(t, 1.0/24, state.OffsetY, 1e-12)
}

func TestClickTogglesNetwork(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, frame(`{"type":"net","uid":"n","pos":[0.5,0.5],"size":[0.2,0.2],"label":"net"}`))

	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 40, 12))
	m = update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 40, 12))

	it, _ := m.Controller().Item("n")
	assert.True(t, it.Expanded())
	assert.NotZero(t, it.Geometry().LabelOffset)
}

func TestResizeRightEdge(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, frame(`{"type":"net","uid":"n","pos":[0.5,0.5],"size":[0.2,0.2]}`))

	// The right edge sits at x=56.
	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 55, 12))
	m = update(t, m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 57, 12))
	m = update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 57, 12))

	it, _ := m.Controller().Item("n")
	assert.False(t, it.Expanded())
	lo, hi := it.Geometry().Bounds()
	assert.InDelta(t, 24.0, lo.X, 1e-9)
	assert.InDelta(t, 58.0, hi.X, 1e-9)
}

func TestWheelZoom(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonWheelUp, 10, 5))
	assert.InDelta(t, 1.1, m.Controller().State().Scale, 1e-12)

	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonWheelDown, 10, 5))
	assert.InDelta(t, 1.0, m.Controller().State().Scale, 1e-12)
}

func TestKeys(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, frame(`{"type":"node","uid":"a","pos":[0.2,0.2],"size":[0.1,0.1]}`))

	m = update(t, m, runes("+"))
	assert.InDelta(t, 1.1, m.Controller().State().Scale, 1e-12)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.NotZero(t, m.Controller().State().OffsetX)

	m = update(t, m, runes("r"))
	assert.Equal(t, 1.0, m.Controller().State().Scale)
	assert.Zero(t, m.Controller().State().OffsetX)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	it, _ := m.Controller().Item("a")
	assert.InDelta(t, 40.0, it.Geometry().Center.X, 1e-9)
	assert.InDelta(t, 12.0, it.Geometry().Center.Y, 1e-9)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestConnectionStatus(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "connecting")

	m = update(t, m, ConnectedMsg{})
	assert.Contains(t, m.View(), "connected")

	m = update(t, m, DisconnectedMsg{Err: errors.New("boom")})
	assert.Contains(t, m.View(), "disconnected: boom")
	assert.EqualError(t, m.Err(), "boom")
}

func TestViewBeforeSize(t *testing.T) {
	m := NewModel(debug.Discard(context.Background()), "test", nil)
	assert.Equal(t, "Initializing...", m.View())
}

func TestResizeEnsembleOutline(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, frame(`{"type":"ens","uid":"e","pos":[0.5,0.5],"size":[0.1,0.1]}`))

	// Rightmost outline cell of the ellipse centered at x=40 with rx=8.
	m = update(t, m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 47, 12))
	m = update(t, m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 49, 12))
	m = update(t, m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 49, 12))

	it, _ := m.Controller().Item("e")
	lo, hi := it.Geometry().Bounds()
	assert.InDelta(t, 32.0, lo.X, 1e-9)
	assert.InDelta(t, 50.0, hi.X, 1e-9)
	w, h := it.Size()
	assert.InDelta(t, 0.1125, w, 1e-9)
	assert.InDelta(t, 0.1, h, 1e-9)
}
