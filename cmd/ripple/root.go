package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/ripple/internal/config"
	"github.com/aretw0/ripple/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Ripple animates breadth-first traversals of undirected graphs",
	Long: `Ripple builds undirected graphs and animates breadth-first traversals over them,
one node per step, streaming every frame to terminals, browsers and agents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// setup loads the configuration, lets explicitly set flags win over file and
// environment values, and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Server.Addr = f.Value.String()
	}
	if f := cmd.Flags().Lookup("redis-addr"); f != nil && f.Changed {
		cfg.Redis.Addr = f.Value.String()
	}
	if f := cmd.Flags().Lookup("origin"); f != nil && f.Changed {
		cfg.Server.OriginPatterns, _ = cmd.Flags().GetStringSlice("origin")
	}
	for name, dst := range map[string]*time.Duration{
		"step-period": &cfg.Animation.StepPeriod,
		"sub-delay":   &cfg.Animation.SubDelay,
		"heartbeat":   &cfg.Server.Heartbeat,
	} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			d, err := time.ParseDuration(f.Value.String())
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --%s: %w", name, err)
			}
			*dst = d
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
