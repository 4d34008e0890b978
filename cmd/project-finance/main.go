// Command project-finance evaluates the financing of the infrastructure sub-projects,
// solves break-even revenues, manages named snapshots and serves the engine
// over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/internal/snapshot"
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configLocation string
	logLevel       string
}

// session is the configuration and logger of one command invocation.
type session struct {
	conf   *config.Configuration
	logger *zap.Logger
	// baseline is set when no configuration file was found.
	baseline bool
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loadEnv reads KEY=value pairs from path into the environment. A missing
// file is not an error.
func loadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// loadConfiguration reads the configuration file. When the default file is
// absent the baseline is used and the second return value is true.
func (o *rootOptions) loadConfiguration(cmd *cobra.Command) (*config.Configuration, bool, error) {
	explicit := cmd.Flag("config") != nil && cmd.Flag("config").Changed
	if _, err := os.Stat(o.configLocation); errors.Is(err, fs.ErrNotExist) && !explicit {
		conf, err := config.LoadConfigurationFromReader(strings.NewReader(""))
		return conf, true, err
	}

	conf, err := config.LoadConfiguration(o.configLocation)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load configuration at %s (see %s): %w",
			o.configLocation, constants.ExampleConfigFile, err)
	}
	return conf, false, nil
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	conf, baseline, err := o.loadConfiguration(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &session{conf: conf, logger: logger, baseline: baseline}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func (s *session) store(ctx context.Context) (snapshot.Store, error) {
	store, err := snapshot.New(ctx, s.logger, s.conf.Snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return store, nil
}

// restore replaces the case described by the configuration file with the
// named snapshot. Logging, output and snapshot settings stay local.
func (s *session) restore(ctx context.Context, name string) error {
	store, err := s.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}

	restored := snap.Configuration
	restored.Logging = s.conf.Logging
	restored.Snapshots = s.conf.Snapshots
	if restored.Output == (config.OutputConfig{}) {
		restored.Output = s.conf.Output
	}
	if len(restored.Components) == 0 {
		restored.Components = config.Baseline().Components
	}
	s.conf = &restored

	s.logger.Info("restored snapshot",
		zap.String("op", "main.restore"),
		zap.String("name", snap.Name),
		zap.Int("version", snap.Version),
	)
	return nil
}

// restoreDefaults applies the snapshot named "defaults" on top of the
// baseline, if one was saved.
func (s *session) restoreDefaults(ctx context.Context) error {
	if !s.baseline {
		return nil
	}
	// Nothing can have been saved into a file store that does not exist yet.
	backend := strings.ToLower(strings.TrimSpace(s.conf.Snapshots.Backend))
	if backend == "" || backend == snapshot.BackendFile {
		dir := s.conf.Snapshots.Directory
		if dir == "" {
			dir = constants.DefaultSnapshotDir
		}
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	err := s.restore(ctx, constants.DefaultsSnapshotName)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil
	}
	return err
}

// warn clamps the assumptions and logs every configuration warning.
func (s *session) warn() {
	warnings := append(s.conf.ClampAssumptions(), s.conf.ValidateConfiguration()...)
	for _, warning := range warnings {
		s.logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "project-finance",
		Short:         "Project finance engine for the A, B and C sub-projects",
		Long:          "Debt schedules, IRR, NPV and payback per sub-project and for the combined view",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newEvaluateCmd(opts),
		newBreakEvenCmd(opts),
		newServeCmd(opts),
		newSnapshotCmd(opts),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := loadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load .env\", \"error\": %q}\n", err.Error())
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q}\n", err.Error())
		os.Exit(1)
	}
}
