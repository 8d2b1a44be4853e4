package main

import (
	"log/slog"
	"os"

	"github.com/dariussullivan/libzmx/internal/config"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	cfgPath  string
	dataDir  string
	cfg      *config.Config
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "libzmx",
	Short: "Lens prescription modeling over a remote design server",
	Long: `libzmx maintains a local object model of an optical prescription
(surfaces, parameters, solves) and synchronizes it with a design-server
process in batched pushes and pulls. Commands run against the built-in
server simulator.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Store.DataDir = dataDir
		}

		// Setup logger
		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		var slogLevel slog.Level
		switch level {
		case "debug":
			slogLevel = slog.LevelDebug
		case "info":
			slogLevel = slog.LevelInfo
		case "warn":
			slogLevel = slog.LevelWarn
		case "error":
			slogLevel = slog.LevelError
		default:
			slogLevel = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: slogLevel}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Prescription store directory (overrides config)")
}
