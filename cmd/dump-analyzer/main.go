package main

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/engine/manager"
	"DumpSpectra/internal/model"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// options holds the flag values of one invocation.
type options struct {
	configPath string
	outputDir  string
	logLevel   string

	dedupAddresses bool
	stripBareIPv4  bool
	hostThreshold  int
	numWorkers     int
}

type pipeline func(m *manager.Manager, ctx context.Context, path string) (*model.Result, error)

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "dump-analyzer",
		Short:         "Traffic statistics and anomaly report from a textual capture",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.outputDir, "out", "o", "", "output directory (overrides output_dir)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <capture>",
		Short: "Filter, aggregate and report on a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("dedup-addresses") {
				cfg.Extractor.DedupAddresses = opts.dedupAddresses
			}
			if flags.Changed("strip-bare-ipv4") {
				cfg.Extractor.StripBareIPv4 = opts.stripBareIPv4
			}
			if flags.Changed("threshold") {
				cfg.Detector.HostThreshold = opts.hostThreshold
			}
			if flags.Changed("workers") {
				cfg.Extractor.Workers = opts.numWorkers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args[0], (*manager.Manager).Analyze)
		},
	}
	analyzeCmd.Flags().BoolVar(&opts.dedupAddresses, "dedup-addresses", false, "count an address found by both passes once")
	analyzeCmd.Flags().BoolVar(&opts.stripBareIPv4, "strip-bare-ipv4", false, "strip the last octet of bare dotted quads like a port")
	analyzeCmd.Flags().IntVar(&opts.hostThreshold, "threshold", 0, "minimum host count for the over-threshold lists")
	analyzeCmd.Flags().IntVarP(&opts.numWorkers, "workers", "w", 0, "number of extraction workers")

	extractCmd := &cobra.Command{
		Use:   "extract <capture>",
		Short: "Extract source/destination pairs and host rows from a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args[0], (*manager.Manager).Extract)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dump-analyzer", version)
		},
	}

	rootCmd.AddCommand(analyzeCmd, extractCmd, versionCmd)
	return rootCmd
}

// loadConfig reads the config file, falling back to the defaults when the
// default path is absent, then applies the global flags and the logger setup.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		if cmd.Flags().Changed("config") || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.Default()
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	log.WithField("output_dir", cfg.OutputDir).Debug("Configuration loaded")
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, path string, stage pipeline) error {
	m, err := manager.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.WithError(err).Warn("Failed to close writers")
		}
	}()
	log.Infof("Manager initialized with %d writer(s).", len(m.Writers()))

	result, err := stage(m, ctx, path)
	if err != nil {
		return err
	}
	if result.InputErr != nil {
		log.WithError(result.InputErr).Warn("Capture unavailable, writing empty results")
	}

	if err := m.Emit(result); err != nil {
		return fmt.Errorf("some outputs failed: %w", err)
	}
	log.Infof("Artifacts written to %s", cfg.OutputDir)
	return nil
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
