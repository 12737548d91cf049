package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/standardhub/stdsync/internal/syncstate"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded sync state",
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
			store := syncstate.NewStore(statePath)

			record := store.Load()
			if record == nil {
				fmt.Println(cyan("no sync state recorded"), "-", "next sync will be a full sync")
				fmt.Println("state file:", statePath)
				return nil
			}

			fmt.Println(green("last sync:"), humanize.Time(record.Timestamp))
			fmt.Println("categories:", record.Categories)
			fmt.Println("files:", record.Metadata.TotalFiles)
			fmt.Printf("cache hit ratio: %.0f%%\n", record.Metadata.CacheHitRatio*100)
			fmt.Println("duration:", record.Metadata.SyncDurationMS, "ms")
			if record.SourceVersion != "" {
				fmt.Println("source version:", record.SourceVersion)
			}
			fmt.Println("state file:", statePath)
			return nil
		},
	}
}
