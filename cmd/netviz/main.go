package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recera/netviz/cmd/netviz/internal/config"
	"github.com/recera/netviz/pkg/debug"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

// Flags shared by every command.
type globalFlags struct {
	dir      string
	logLevel string
}

func main() {
	var flags globalFlags

	var rootCmd = &cobra.Command{
		Use:   "netviz",
		Short: "netviz - live viewer for neural network diagrams",
		Long: `netviz connects to a diagram publisher over a websocket and shows the
diagram as a pannable, zoomable picture. Items arrive as JSON frames and can
be dragged, resized, and expanded.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Project directory containing "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(newViewCommand(&flags))
	rootCmd.AddCommand(newSnapshotCommand(&flags))
	rootCmd.AddCommand(newServeCommand(&flags))
	rootCmd.AddCommand(newInitCommand(&flags))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the project configuration and applies the log level override.
func (f *globalFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if f.logLevel != "" {
		if _, err := debug.ParseLevel(f.logLevel); err != nil {
			return nil, err
		}
		cfg.Log.Level = f.logLevel
	}
	return cfg, nil
}

// stderrContext logs to stderr at the configured level.
func stderrContext(ctx context.Context, cfg *config.Config) context.Context {
	level, _ := debug.ParseLevel(cfg.Log.Level)
	return debug.Stderr(ctx, level)
}
