package netgraph

import (
	"errors"
	"math"
)

var (
	// ErrUnknownItem is returned when a uid is not in the collection.
	ErrUnknownItem = errors.New("unknown item")
	// ErrNonFinite is returned when a mutation would store NaN or Inf.
	ErrNonFinite = errors.New("non-finite geometry")
	// ErrDegenerateSurface is returned when the surface or scale cannot map coordinates.
	ErrDegenerateSurface = errors.New("degenerate surface")
	// ErrNotExpandable is returned when toggling an item that is not a network.
	ErrNotExpandable = errors.New("item is not expandable")
	// ErrInvalidInfo is returned for creation requests missing a uid or type.
	ErrInvalidInfo = errors.New("invalid item info")
)

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
