package diagram

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/live"
	"github.com/recera/netviz/pkg/netgraph"
)

const sample = `
diagrams:
  0:
    - uid: model
      type: net
      pos: [0.5, 0.5]
      size: [0.4, 0.3]
      label: model
    - uid: a
      type: ens
      pos: [0.3, 0.5]
      size: [0.05, 0.05]
  3:
    - uid: b
      type: node
      pos: [0.1, 0.2]
      size: [0.01, 0.02]
`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestParse(t *testing.T) {
	diagrams, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, diagrams, 2)

	assert.Equal(t, netgraph.Info{
		UID:   "model",
		Type:  netgraph.TypeNetwork,
		Pos:   [2]float64{0.5, 0.5},
		Size:  [2]float64{0.4, 0.3},
		Label: "model",
	}, diagrams[0][0])
	assert.Equal(t, netgraph.TypeEnsemble, diagrams[0][1].Type)
	assert.Equal(t, "b", diagrams[3][0].UID)
}

func TestParseRejectsBadItems(t *testing.T) {
	_, err := Parse([]byte("diagrams:\n  0:\n    - uid: x\n      type: blob\n"))
	assert.ErrorIs(t, err, live.ErrProtocol)

	_, err = Parse([]byte("diagrams:\n  0:\n    - type: node\n"))
	assert.ErrorIs(t, err, live.ErrProtocol)

	_, err = Parse([]byte("diagrams:\n  0:\n    - uid: x\n      type: node\n      pos: [.nan, 0]\n      size: [0.1, 0.1]\n"))
	assert.ErrorIs(t, err, netgraph.ErrNonFinite)

	_, err = Parse([]byte("diagrams:\n  0:\n    - uid: x\n      type: ens\n      pos: [0, 0]\n      size: [.inf, 0.1]\n"))
	assert.ErrorIs(t, err, netgraph.ErrNonFinite)

	_, err = Parse([]byte("diagrams: ["))
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.yaml")
	writeFile(t, path, sample)

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, s.IDs())

	items, err := s.Items(0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Returned slices are copies.
	items[0].UID = "changed"
	again, _ := s.Items(0)
	assert.Equal(t, "model", again[0].UID)

	_, err = s.Items(9)
	assert.Error(t, err)

	// A broken file keeps the previous contents.
	writeFile(t, path, "diagrams: [")
	assert.Error(t, s.Reload())
	assert.Equal(t, []int{0, 3}, s.IDs())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.yaml")
	writeFile(t, path, sample)
	s, err := Open(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(debug.Discard(context.Background()))
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "diagrams:\n  7:\n    - uid: z\n      type: node\n      pos: [0, 0]\n      size: [0.1, 0.1]\n")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
	assert.Equal(t, []int{7}, s.IDs())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
