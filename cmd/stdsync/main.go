package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/standardhub/stdsync/internal/config"
	"github.com/standardhub/stdsync/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "stdsync",
	Short:   "Sync a curated standards-document corpus into a local directory",
	Version: version.Detailed(),
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Local directory tree to sync into")
	rootCmd.PersistentFlags().StringP("source-dir", "s", "", "Local materialization of the remote corpus")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache directory (content cache, sync state, index)")
	rootCmd.PersistentFlags().String("state-path", "", "Explicit sync state file path")
	rootCmd.PersistentFlags().Float64("cache-hit-threshold", 0, "Cache coverage below which a remote fetch is forced")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
}

// loadConfig builds the one Config value of the process: flags beat
// environment (STDSYNC_*), environment beats defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Root().PersistentFlags()
	v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	v.BindPFlag("source_dir", flags.Lookup("source-dir"))
	v.BindPFlag("cache_dir", flags.Lookup("cache-dir"))
	v.BindPFlag("state_path", flags.Lookup("state-path"))
	v.BindPFlag("cache_hit_threshold", flags.Lookup("cache-hit-threshold"))

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
