package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/cobra"

	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/live"
	"github.com/recera/netviz/pkg/netgraph"
	"github.com/recera/netviz/pkg/renderer/raster"
	"github.com/recera/netviz/pkg/renderer/svg"
	"github.com/recera/netviz/pkg/scheduler"
)

func newSnapshotCommand(flags *globalFlags) *cobra.Command {
	var url string
	var id int
	var wait time.Duration
	var output string
	var fit bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a diagram to SVG or PNG",
		Long: `Connects to the publisher, collects frames for --wait, and writes the
diagram as it would appear in a viewer of the configured surface size.
The output format follows the file extension (.svg or .png).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("url") {
				cfg.Server.URL = url
			}
			if cmd.Flags().Changed("id") {
				cfg.Server.ID = id
			}
			endpoint, err := live.Endpoint(cfg.Server.URL, cfg.Server.ID)
			if err != nil {
				return err
			}
			ctx := stderrContext(cmd.Context(), cfg)

			ctrl := netgraph.NewController(cfg.SurfaceSize(), cfg.Options())
			return snapshot(ctx, ctrl, endpoint, wait, fit, output)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Publisher base URL (overrides config)")
	cmd.Flags().IntVar(&id, "id", 0, "Diagram id (overrides config)")
	cmd.Flags().DurationVar(&wait, "wait", 2*time.Second, "How long to collect frames")
	cmd.Flags().StringVarP(&output, "output", "o", "diagram.svg", "Output file (.svg or .png)")
	cmd.Flags().BoolVar(&fit, "fit", false, "Fit every item into the picture")

	return cmd
}

func snapshot(ctx context.Context, ctrl *netgraph.Controller, endpoint string, wait time.Duration, fit bool, output string) error {
	ext := strings.ToLower(filepath.Ext(output))
	if ext != ".svg" && ext != ".png" {
		return fmt.Errorf("unsupported output format %q", ext)
	}

	sched := scheduler.NewScheduler(ctrl, 256)
	sched.Start(ctx)
	defer sched.Stop()

	ingest := live.NewIngestor(sched)
	client := live.NewClient(endpoint)
	client.OnFrame(func(frame []byte) {
		_ = ingest.Handle(ctx, frame)
	})

	runCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := client.Run(runCtx); err != nil {
		return err
	}

	if fit {
		if err := sched.Post(ctx, netgraph.Fit{Padding: 10}); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	var renderErr error
	var items int
	err := sched.Do(ctx, func() {
		items = ctrl.Len()
		switch ext {
		case ".svg":
			renderErr = svg.NewRenderer(&buf).Render(ctrl.Surface(), ctrl.Items())
		case ".png":
			renderErr = raster.WritePNG(&buf, ctrl.Surface(), ctrl.Items())
		}
	})
	if err != nil {
		return err
	}
	if renderErr != nil {
		return renderErr
	}

	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return err
	}
	debug.Info(ctx, "snapshot written",
		slog.F("path", output),
		slog.F("items", items),
		slog.F("forwarded", ingest.Created()),
		slog.F("dropped", ingest.Dropped()))
	return nil
}
