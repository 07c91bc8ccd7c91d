package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-brains/pkg/sim"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a simulation file and build every robot in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			r, err := sim.FromConfig(cfg, filepath.Dir(configPath))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d robots, %d items\n",
				configPath, len(r.Snapshots()), len(r.World().Items()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/sim.yaml", "Simulation file")
	return cmd
}
