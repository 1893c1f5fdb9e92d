package netgraph

// API is the imperative view control surface a host UI keeps around,
// for example to bind keyboard shortcuts.
type API interface {
	Reset() error
	FocusItem(uid string, scale float64) error
	Fit(padding float64) error
	State() ViewportState
}

var _ API = (*Controller)(nil)
