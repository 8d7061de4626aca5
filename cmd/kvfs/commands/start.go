package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/api"
	"github.com/marmos91/kvfs/pkg/auth"
	"github.com/marmos91/kvfs/pkg/config"
	"github.com/marmos91/kvfs/pkg/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	startForeground bool
	startPidFile    string
	startLogFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the kvfs server",
	Long: `Start the kvfs server.

The server detaches into the background by default. Use --foreground when
debugging or when a process supervisor manages the lifecycle.

Without --config the configuration is read from
$XDG_CONFIG_HOME/kvfs/config.yaml if it exists.

Examples:
  # Start in the background
  kvfs start

  # Start in the foreground
  kvfs start --foreground

  # Start with a custom config file
  kvfs start --config /etc/kvfs/config.yaml

  # Override settings through the environment
  KVFS_LOGGING_LEVEL=DEBUG kvfs start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&startForeground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&startPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/kvfs/kvfs.pid)")
	startCmd.Flags().StringVar(&startLogFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/kvfs/kvfs.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !startForeground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// The context cancels on SIGINT/SIGTERM and drives the shutdown of
	// every component below.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "kvfs",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "kvfs",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("kvfs - POSIX-like filesystem on a key-value store")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Metrics come up first so the store and filesystem collectors register
	// against the live registry.
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port})
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Open the key-value store backing the filesystem
	store, err := config.NewStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()
	logger.Info("Store opened", logger.KeyStoreType, cfg.Store.Type, "max_value_size", cfg.Store.MaxValueSize)

	// Layer the chunked filesystem on the store
	fsys, err := config.NewFileSystem(store, cfg.Filesystem)
	if err != nil {
		return fmt.Errorf("failed to create filesystem: %w", err)
	}
	if err := fsys.EnsureRoot(ctx); err != nil {
		return fmt.Errorf("failed to ensure root directory: %w", err)
	}
	logger.Info("Filesystem ready", "encoding", cfg.Filesystem.Encoding)

	// Initialize user store for API authentication
	users, err := auth.NewStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open user database: %w", err)
	}
	defer func() {
		if err := users.Close(); err != nil {
			logger.Error("User database close error", "error", err)
		}
	}()

	// Ensure admin user exists (generates random password on first run)
	adminPassword, err := users.EnsureAdminUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if adminPassword != "" {
		logger.Info("Admin user created", "username", auth.AdminUsername)
		fmt.Printf("\n*** IMPORTANT: Admin user created with password: %s ***\n", adminPassword)
		fmt.Println("Please save this password. It will not be shown again.")
		fmt.Println()
	}

	// The JWT secret gates every authenticated endpoint; refuse to serve
	// without one rather than failing each login later.
	if !cfg.API.HasJWTSecret() {
		return fmt.Errorf("no JWT secret configured\n\n"+
			"Set the %s environment variable:\n"+
			"  export %s=$(openssl rand -hex 32)\n\n"+
			"Or run 'kvfs init' to generate a config file with a development secret",
			api.EnvAPISecret, api.EnvAPISecret)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               cfg.API.GetJWTSecret(),
		AccessTokenDuration:  cfg.API.JWT.AccessTokenDuration,
		RefreshTokenDuration: cfg.API.JWT.RefreshTokenDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	apiServer := api.NewServer(cfg.API, fsys, store, string(cfg.Store.Type), users, jwtService)
	logger.Info("API server configured", "port", apiServer.Port())

	if startPidFile != "" {
		if err := os.WriteFile(startPidFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(startPidFile) }()
	}

	// Reload logging settings when the config file is rewritten. Everything
	// else needs a restart. A watcher failure is logged, not fatal.
	if source := getConfigSource(GetConfigFile()); source != "defaults" {
		go func() {
			if err := config.Watch(ctx, source, applyConfigChange); err != nil {
				logger.Warn("Config watcher stopped", "error", err)
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return apiServer.Start(gctx) })
	if metricsServer != nil {
		g.Go(func() error { return metricsServer.Start(gctx) })
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- g.Wait()
	}()

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		stop()
		logger.Info("Shutdown signal received, initiating graceful shutdown")

		// Bounded wait for the servers to drain.
		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", "error", err)
				return err
			}
			logger.Info("Server stopped gracefully")
		case <-time.After(cfg.ShutdownTimeout):
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// applyConfigChange applies the parts of a reloaded configuration that can
// change at runtime: the logging level and format.
func applyConfigChange(cfg *config.Config) {
	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	logger.Info("Logging settings applied",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format)
	logger.Info("Store, filesystem and server changes take effect on restart")
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// startDaemon re-executes the binary in the foreground, detached into its
// own session, with output going to the daemon log file.
func startDaemon() error {
	if err := os.MkdirAll(GetDefaultStateDir(), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := startPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}
	if pid, ok := runningPID(pidPath); ok {
		return fmt.Errorf("kvfs is already running (PID %d)", pid)
	}
	// Drop a stale PID file from a previous run.
	_ = os.Remove(pidPath)

	logPath := startLogFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if cfgPath := GetConfigFile(); cfgPath != "" {
		daemonArgs = append(daemonArgs, "--config", cfgPath)
	}

	logHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logHandle.Close() }()

	daemon := exec.Command(executable, daemonArgs...)
	daemon.Stdout = logHandle
	daemon.Stderr = logHandle
	// A fresh session detaches the child from this terminal.
	daemon.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := daemon.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("kvfs started in background (PID %d)\n", daemon.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Printf("\nLogs: tail -f %s\n", logPath)
	return nil
}
