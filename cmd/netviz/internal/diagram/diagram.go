// Package diagram loads the diagrams published by `netviz serve` from a YAML file.
package diagram

import (
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/recera/netviz/pkg/live"
	"github.com/recera/netviz/pkg/netgraph"
)

// File is the on-disk layout:
//
//	diagrams:
//	  0:
//	    - uid: sim
//	      type: net
//	      pos: [0.5, 0.5]
//	      size: [0.4, 0.3]
//	      label: model
type File struct {
	Diagrams map[int][]ItemSpec `yaml:"diagrams"`
}

// ItemSpec is one item entry.
type ItemSpec struct {
	UID   string     `yaml:"uid"`
	Type  string     `yaml:"type"`
	Pos   [2]float64 `yaml:"pos"`
	Size  [2]float64 `yaml:"size"`
	Label string     `yaml:"label,omitempty"`
}

func (s ItemSpec) info() netgraph.Info {
	return netgraph.Info{
		UID:   s.UID,
		Type:  netgraph.ItemType(s.Type),
		Pos:   s.Pos,
		Size:  s.Size,
		Label: s.Label,
	}
}

// Parse decodes and validates a diagram file.
func Parse(data []byte) (map[int][]netgraph.Info, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	out := make(map[int][]netgraph.Info, len(f.Diagrams))
	for id, specs := range f.Diagrams {
		infos := make([]netgraph.Info, 0, len(specs))
		for i, s := range specs {
			info := s.info()
			if err := live.CreateMessage(info).Validate(); err != nil {
				return nil, fmt.Errorf("diagram %d item %d: %w", id, i, err)
			}
			if !finite(info.Pos[0], info.Pos[1], info.Size[0], info.Size[1]) {
				return nil, fmt.Errorf("diagram %d item %s: %w", id, info.UID, netgraph.ErrNonFinite)
			}
			infos = append(infos, info)
		}
		out[id] = infos
	}
	return out, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Store holds the most recently loaded diagrams and serves them as a live.Source.
type Store struct {
	path string

	mu       sync.RWMutex
	diagrams map[int][]netgraph.Info
}

var _ live.Source = (*Store)(nil)

// Open loads path into a new store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Reload rereads the file. On error the previous diagrams are kept.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	diagrams, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}

	s.mu.Lock()
	s.diagrams = diagrams
	s.mu.Unlock()
	return nil
}

// Items returns a copy of diagram id. Unknown ids yield an error.
func (s *Store) Items(id int) ([]netgraph.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos, ok := s.diagrams[id]
	if !ok {
		return nil, fmt.Errorf("unknown diagram %d", id)
	}
	return append([]netgraph.Info(nil), infos...), nil
}

// IDs returns the known diagram ids in ascending order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.diagrams))
	for id := range s.diagrams {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
