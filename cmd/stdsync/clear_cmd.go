package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/standardhub/stdsync/internal/syncstate"
)

func init() {
	rootCmd.AddCommand(newClearCmd())
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the recorded sync state (next sync will be full)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
			cmd.SilenceUsage = true

			statePath, err := syncstate.ResolveStatePath(cfg.StatePath, cfg.CacheDir)
			if err != nil {
				return err
			}

			if err := syncstate.NewStore(statePath).Clear(); err != nil {
				return err
			}
			fmt.Println(green("sync state cleared"), statePath)
			return nil
		},
	}
}
