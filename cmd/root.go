package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/logger"
	"github.com/KaramelBytes/tabloom-cli/internal/metrics"
)

var (
	// Global flags
	cfgFile         string
	debug           bool
	flagLogLevel    string
	flagMetricsFile string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Per-invocation collectors, written to --metrics-file when set.
	recorder *metrics.Recorder
)

var rootCmd = &cobra.Command{
	Use:   "tabloom",
	Short: "Tabloom CLI: clean, scale and encode tabular data, then rank features",
	Long: `Tabloom is a CLI tool that prepares CSV/TSV/XLSX datasets for modelling:
it classifies columns, drops null/duplicate/outlier rows, scales numeric
columns, one-hot encodes categorical ones and ranks features by random
forest importance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path (overrides config)")
}

func loadConfig() {
	recorder = metrics.NewRecorder()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{LogLevel: "warn", LogFormat: "console", DefaultScaling: "none", ForestTrees: 100, SampleRows: 5}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	lc := logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat}
	if debug {
		lc.Level, lc.Encoding, lc.Development = "debug", "console", true
	}
	if err := logger.Init(lc); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
}

// track runs fn, counts the outcome and flushes metrics when a metrics file
// is configured.
func track(command string, fn func() error) error {
	start := time.Now()
	err := fn()
	log := logger.Get().With(zap.String("command", command), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Debug("command failed", zap.Error(err))
	} else {
		log.Debug("command finished")
	}
	recorder.RunFinished(command, err)
	if cfg != nil && cfg.MetricsFile != "" {
		if werr := recorder.WriteTextfile(cfg.MetricsFile); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
