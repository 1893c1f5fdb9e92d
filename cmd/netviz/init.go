package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/netviz/cmd/netviz/internal/config"
)

const sampleDiagram = `diagrams:
  0:
    - uid: model
      type: net
      pos: [0.5, 0.5]
      size: [0.4, 0.3]
      label: model
    - uid: input
      type: node
      pos: [0.3, 0.5]
      size: [0.03, 0.03]
      label: input
    - uid: ens
      type: ens
      pos: [0.6, 0.5]
      size: [0.05, 0.05]
      label: ens
`

func newInitCommand(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and sample diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := filepath.Join(flags.dir, config.FileName)
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.DefaultConfig()
			if err := config.Save(cfg, flags.dir); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			diagramPath := filepath.Join(flags.dir, cfg.Serve.Diagram)
			if _, err := os.Stat(diagramPath); errors.Is(err, os.ErrNotExist) || force {
				if err := os.WriteFile(diagramPath, []byte(sampleDiagram), 0644); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s and %s\n", cfgPath, diagramPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}
