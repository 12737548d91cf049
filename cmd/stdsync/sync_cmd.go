package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardhub/stdsync/internal/cache"
	"github.com/standardhub/stdsync/internal/discovery"
	"github.com/standardhub/stdsync/internal/syncer"
	"github.com/standardhub/stdsync/internal/syncstate"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	var force bool
	var refresh bool
	var dryRun bool
	var noCache bool
	var warmIndex bool
	var categories []string

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Incrementally sync the corpus into the local tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
			cmd.SilenceUsage = true

			if cfg.SourceDir == "" {
				return fmt.Errorf("no source directory configured (use --source-dir or STDSYNC_SOURCE_DIR)")
			}

			opts := []syncer.Option{syncer.WithThreshold(cfg.HitRatioThreshold)}

			var store *cache.ContentCache
			if !noCache {
				store, err = cache.New(cfg.ContentCacheDir())
				if err != nil {
					// the cache is an accelerator, not a requirement
					slog.Warn("content cache unavailable, continuing without it", "error", err)
				} else {
					opts = append(opts, syncer.WithCache(store))
				}
			}

			statePath, err := syncstate.ResolveStatePath(cfg.StatePath, cfg.CacheDir)
			if err != nil {
				return err
			}
			opts = append(opts, syncer.WithStateStore(syncstate.NewStore(statePath)))

			o := syncer.New(cfg.SourceDir, cfg.DataDir, opts...)
			result, err := o.Sync(cmd.Context(), syncer.SyncOptions{
				Force:      force,
				Verbose:    verbose,
				ForceGit:   refresh,
				DryRun:     dryRun,
				Categories: append(categories, cfg.Categories...),
			})
			if err != nil {
				fmt.Println(red("sync failed:"), err)
				return err
			}

			renderSyncResult(result, verbose, dryRun)

			if warmIndex && store != nil && !dryRun {
				warmDiscoveryIndex(cmd, cfg.IndexPath(), cfg.DataDir, store)
			}

			if len(result.Errors) > 0 {
				return fmt.Errorf("%d file(s) failed to sync", len(result.Errors))
			}
			return nil
		},
	}

	syncCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite locally modified files")
	syncCmd.Flags().BoolVar(&refresh, "refresh", false, "Force a remote refresh regardless of cache coverage")
	syncCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without touching anything")
	syncCmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the content cache")
	syncCmd.Flags().BoolVar(&warmIndex, "warm-index", false, "Warm the discovery index after syncing")
	syncCmd.Flags().StringSliceVarP(&categories, "category", "C", nil, "Category to sync (repeatable; the base set is always included)")

	return syncCmd
}

func renderSyncResult(result *syncer.SyncResult, verbose, dryRun bool) {
	verb := "synced"
	if dryRun {
		verb = "would sync"
	}
	fmt.Printf("%s %s file(s), %s skipped, %s error(s) in %s\n",
		green(verb), green(len(result.Copied)),
		cyan(len(result.Skipped)), red(len(result.Errors)),
		result.Duration.Round(time.Millisecond))

	if verbose {
		for _, p := range result.Copied {
			fmt.Println(green("  + "), p)
		}
		for _, p := range result.Skipped {
			fmt.Println(cyan("  ~ "), p, "(local changes preserved)")
		}
	}
	for _, fe := range result.Errors {
		fmt.Println(red("  ! "), fe.Error())
	}
}

// warmDiscoveryIndex kicks the background warmer; the sync result has
// already rendered, so waiting here only delays process exit.
func warmDiscoveryIndex(cmd *cobra.Command, indexPath, root string, store *cache.ContentCache) {
	idx, err := discovery.OpenIndex(indexPath)
	if err != nil {
		slog.Warn("discovery index unavailable", "error", err)
		return
	}
	defer idx.Close()

	w := discovery.NewWarmer(root, store, idx)
	if !w.Start(cmd.Context()) {
		return
	}
	w.Wait()
	status := w.Status()
	if status.LastError != nil {
		slog.Warn("index warm-up finished with errors", "indexed", status.Indexed,
			"skipped", status.Skipped, "error", status.LastError)
		return
	}
	slog.Info("index warmed", "documents", status.Indexed)
}
