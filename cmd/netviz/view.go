package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/netviz/cmd/netviz/internal/ui"
	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/live"
)

func newViewCommand(flags *globalFlags) *cobra.Command {
	var url string
	var id int
	var logFile string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show a live diagram in the terminal",
		Long: `Connects to the publisher and draws the diagram in the terminal.
Drag empty space to pan, scroll to zoom, drag items to move them, drag their
borders to resize, and click a network to expand or collapse it.`,
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

			// The terminal belongs to the UI; logs go to a file or nowhere.
			ctx := debug.Discard(cmd.Context())
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				level, _ := debug.ParseLevel(cfg.Log.Level)
				ctx = debug.Writer(ctx, f, level)
			}

			title := fmt.Sprintf("netviz #%d", cfg.Server.ID)
			model := ui.NewModel(ctx, title, cfg.Options())
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

			client := live.NewClient(endpoint)
			client.OnFrame(func(frame []byte) { p.Send(ui.FrameMsg(frame)) })
			client.OnReady(func() { p.Send(ui.ConnectedMsg{}) })
			go func() {
				err := client.Run(ctx)
				p.Send(ui.DisconnectedMsg{Err: err})
			}()
			defer client.Close()

			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(ui.Model); ok && m.Err() != nil {
				return m.Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Publisher base URL (overrides config)")
	cmd.Flags().IntVar(&id, "id", 0, "Diagram id (overrides config)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	return cmd
}
