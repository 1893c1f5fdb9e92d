package main

import (
	"context"
	"image/png"
	"net/http/httptest"
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

func publisher(t *testing.T) string {
	t.Helper()
	ctx := debug.Discard(context.Background())
	server := live.NewServer(ctx, live.SourceFunc(func(id int) ([]netgraph.Info, error) {
		return []netgraph.Info{
			{UID: "a", Type: netgraph.TypeNode, Pos: [2]float64{0.5, 0.5}, Size: [2]float64{0.1, 0.05}, Label: "alpha"},
			{UID: "n", Type: netgraph.TypeNetwork, Pos: [2]float64{0.2, 0.2}, Size: [2]float64{0.1, 0.1}, Label: "net"},
		}, nil
	}))
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		server.Close()
		srv.Close()
	})

	endpoint, err := live.Endpoint(srv.URL, 0)
	require.NoError(t, err)
	return endpoint
}

func TestSnapshotSVG(t *testing.T) {
	endpoint := publisher(t)
	out := filepath.Join(t.TempDir(), "out.svg")
	ctx := debug.Discard(context.Background())

	ctrl := netgraph.NewController(netgraph.Surface{Width: 800, Height: 600}, nil)
	require.NoError(t, snapshot(ctx, ctrl, endpoint, 300*time.Millisecond, false, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `<g id="a" class="node" transform="translate(400, 300)">`)
	assert.Contains(t, s, `<g id="n" class="net" transform="translate(160, 120)">`)
	assert.Contains(t, s, ">alpha</text>")
}

func TestSnapshotPNGFit(t *testing.T) {
	endpoint := publisher(t)
	out := filepath.Join(t.TempDir(), "out.png")
	ctx := debug.Discard(context.Background())

	ctrl := netgraph.NewController(netgraph.Surface{Width: 200, Height: 100}, nil)
	require.NoError(t, snapshot(ctx, ctrl, endpoint, 300*time.Millisecond, true, out))
	assert.NotEqual(t, 1.0, ctrl.State().Scale)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestSnapshotRejectsFormat(t *testing.T) {
	ctx := debug.Discard(context.Background())
	ctrl := netgraph.NewController(netgraph.Surface{Width: 10, Height: 10}, nil)
	err := snapshot(ctx, ctrl, "ws://127.0.0.1:1/viz_component?id=0", time.Millisecond, false, "out.gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
