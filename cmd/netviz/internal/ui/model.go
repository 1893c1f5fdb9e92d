// Package ui is the terminal viewer: a bubbletea program that drives a
// netgraph controller from keyboard, mouse and publisher frames.
package ui

import (
	"context"
	"fmt"
	"strings"

	"cdr.dev/slog"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/live"
	"github.com/recera/netviz/pkg/netgraph"
)

// Rows reserved below the canvas for the status and help lines.
const chromeRows = 2

// Messages
type (
	// FrameMsg is one text frame from the publisher.
	FrameMsg []byte
	// ConnectedMsg is sent once the websocket is open.
	ConnectedMsg struct{}
	// DisconnectedMsg is sent when the connection ends.
	DisconnectedMsg struct{ Err error }
)

// Model represents the viewer state
type Model struct {
	ctx    context.Context
	ctrl   *netgraph.Controller
	ingest *live.Ingestor
	title  string

	// Window dimensions
	width  int
	height int

	// UI components
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	// Connection state
	connected bool
	closed    bool
	err       error

	gesture *gesture
	focus   int

	quitting bool
}

// NewModel creates a viewer. Item extents are floored to one cell.
func NewModel(ctx context.Context, title string, opts *netgraph.Options) Model {
	o := netgraph.Options{}
	if opts != nil {
		o = *opts
	}
	o.MinWidth, o.MinHeight = 1, 1

	ctrl := netgraph.NewController(netgraph.Surface{}, &o)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		ctx:     debug.Named(ctx, "ui"),
		ctrl:    ctrl,
		ingest:  live.NewIngestor(ctrl),
		title:   title,
		keys:    DefaultKeyMap,
		help:    help.New(),
		spinner: s,
	}
}

// Controller exposes the viewport controller.
func (m Model) Controller() *netgraph.Controller { return m.ctrl }

// Err returns the error that ended the connection, if any.
func (m Model) Err() error { return m.err }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dispatch(netgraph.WindowResize{
			Width:  float64(msg.Width),
			Height: float64(max(msg.Height-chromeRows, 0)),
		})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case FrameMsg:
		// Malformed frames are logged and dropped by the ingestor.
		_ = m.ingest.Handle(m.ctx, msg)
		return m, nil

	case ConnectedMsg:
		m.connected = true
		return m, nil

	case DisconnectedMsg:
		m.connected = false
		m.closed = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.connected || m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Pan distance in cells. Terminal cells are about twice as tall as wide.
	const stepX, stepY = 4, 2

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.dispatch(netgraph.Pan{DY: stepY})
	case key.Matches(msg, m.keys.Down):
		m.dispatch(netgraph.Pan{DY: -stepY})
	case key.Matches(msg, m.keys.Left):
		m.dispatch(netgraph.Pan{DX: stepX})
	case key.Matches(msg, m.keys.Right):
		m.dispatch(netgraph.Pan{DX: -stepX})
	case key.Matches(msg, m.keys.ZoomIn):
		m.dispatch(m.centerZoom(1))
	case key.Matches(msg, m.keys.ZoomOut):
		m.dispatch(m.centerZoom(-1))
	case key.Matches(msg, m.keys.Reset):
		m.dispatch(netgraph.ResetView{})
	case key.Matches(msg, m.keys.Fit):
		m.dispatch(netgraph.Fit{Padding: 1})
	case key.Matches(msg, m.keys.Next):
		items := m.ctrl.Items()
		if len(items) > 0 {
			m.focus = (m.focus + 1) % len(items)
			m.dispatch(netgraph.Focus{UID: items[m.focus].UID()})
		}
	case key.Matches(msg, m.keys.Toggle):
		items := m.ctrl.Items()
		if m.focus < len(items) {
			m.dispatch(netgraph.Tap{UID: items[m.focus].UID()})
		}
	}
	return m, nil
}

func (m Model) centerZoom(delta float64) netgraph.Zoom {
	s := m.ctrl.Surface()
	return netgraph.Zoom{Delta: delta, X: s.Width / 2, Y: s.Height / 2}
}

func (m Model) dispatch(ev netgraph.Event) {
	if err := m.ctrl.Dispatch(m.ctx, ev); err != nil {
		debug.Debug(m.ctx, "event rejected", slog.F("kind", ev.Kind()), slog.Error(err))
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	canvas := newCanvas(m.width, max(m.height-chromeRows, 0))
	canvas.drawItems(m.ctrl.Items())
	b.WriteString(canvas.String())
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderStatus() string {
	state := m.ctrl.State()
	var conn string
	switch {
	case m.connected:
		conn = successStyle.Render("connected")
	case m.closed && m.err != nil:
		conn = errorStyle.Render(fmt.Sprintf("disconnected: %v", m.err))
	case m.closed:
		conn = mutedStyle.Render("disconnected")
	default:
		conn = m.spinner.View() + " connecting"
	}
	info := fmt.Sprintf(" %d items  scale %.2f  dropped %d ", m.ctrl.Len(), state.Scale, m.ingest.Dropped())
	return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render(m.title), mutedStyle.Render(info), conn)
}
