package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/cobra"

	"github.com/recera/netviz/cmd/netviz/internal/diagram"
	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/live"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string
	var file string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish diagrams from a YAML file",
		Long: `Serves the diagrams in a YAML file on the viewer websocket route.
The file is watched and every connected viewer receives the new items on save.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("diagram") {
				cfg.Serve.Diagram = file
			}
			path := cfg.Serve.Diagram
			if !filepath.IsAbs(path) {
				path = filepath.Join(flags.dir, path)
			}
			ctx := stderrContext(cmd.Context(), cfg)
			return serve(ctx, cfg.Serve.Addr, path, cfg.Serve.Ping)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&file, "diagram", "", "Diagram file (overrides config)")

	return cmd
}

func serve(ctx context.Context, addr, path string, ping time.Duration) error {
	store, err := diagram.Open(path)
	if err != nil {
		return fmt.Errorf("failed to load diagram: %w", err)
	}

	server := live.NewServer(ctx, store)
	server.PingInterval = ping
	defer server.Close()

	go func() {
		if err := store.Watch(debug.Named(ctx, "watch"), server.Broadcast); err != nil {
			debug.Warn(ctx, "diagram watcher stopped", slog.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	debug.Info(ctx, "serving diagrams",
		slog.F("addr", addr),
		slog.F("path", live.Path),
		slog.F("diagrams", store.IDs()))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
