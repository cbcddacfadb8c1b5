package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sarth-shah20/llmstack/internal/config"
	"github.com/sarth-shah20/llmstack/internal/docker"
	"github.com/sarth-shah20/llmstack/internal/logging"
	"github.com/sarth-shah20/llmstack/internal/stack"
)

// Global state filled by PersistentPreRunE
var (
	cfg    *config.Config
	logger *log.Logger
)

// Flag values
var (
	configPath string
	namespace  string
	dataDir    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "llmstack",
	Short:         "llmstack: run Open WebUI and its backend services locally",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE runs before ANY command (up, down, etc.)
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("namespace") {
			loaded.Namespace = namespace
		}
		if cmd.Flags().Changed("data-dir") {
			loaded.DataDir = dataDir
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}

		cfg = loaded
		logger = logging.New(os.Stderr, cfg.LogLevel)
		logger.Debug("loaded config", "path", configPath, "extra_services", len(cfg.ExtraBackendServices))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", config.DefaultNamespace, "prefix for every network and container name")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "host directory mounted into Open WebUI")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
}

// loadConfig reads the config file. A missing file is only an error when the
// path was given explicitly; otherwise the defaults are used.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := config.Load(configPath)
	if err == nil {
		return loaded, nil
	}
	if errors.Is(err, config.ErrNotFound) && !cmd.Flags().Changed("config") {
		return config.LoadDefaults()
	}
	return nil, err
}

// newStack connects to the engine and builds the Stack for the loaded config.
// The returned close func releases the engine connection.
func newStack(ctx context.Context) (*stack.Stack, func() error, error) {
	mgr, err := docker.NewManager(logger)
	if err != nil {
		return nil, nil, err
	}

	if err := mgr.Ping(ctx); err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("cannot reach the docker daemon, is it running? %w", err)
	}

	dir, err := resolveDataDir(cfg.DataDir)
	if err != nil {
		mgr.Close()
		return nil, nil, err
	}

	s := stack.New(mgr, cfg, stack.Options{DataDir: dir, Logger: logger})
	return s, mgr.Close, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "llmstack.yaml"
	}
	return filepath.Join(dir, "llmstack", "llmstack.yaml")
}

// resolveDataDir makes sure the Open WebUI data directory exists on the host.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate user config dir: %w", err)
		}
		dir = filepath.Join(base, "llmstack", "openwebui", "data")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}
	return abs, nil
}
