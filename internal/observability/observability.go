package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/cfb-analytics/internal/config"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// ShutdownFunc flushes spans and stops the profiler.
type ShutdownFunc func(context.Context) error

// Start boots tracing and profiling for one CLI. The command name is attached
// to spans and profiles so builder and puller runs can be told apart.
func Start(cfg config.Config, command string, logger *logging.Logger) (ShutdownFunc, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("command", command)

	flush, err := startTracing(cfg, command, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	stop, err := startProfiling(cfg, command, logger)
	if err != nil {
		_ = flush(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(stop(), flush(ctx))
	}, nil
}

func startTracing(cfg config.Config, command string, logger *logging.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.UptraceEnabled {
		logger.Debug("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noop, nil
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Warn("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noop, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(serviceName(cfg.ServiceName, command)),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	logger.Info("uptrace enabled", "service_name", serviceName(cfg.ServiceName, command), "environment", cfg.AppEnv)
	return uptrace.Shutdown, nil
}

func startProfiling(cfg config.Config, command string, logger *logging.Logger) (func() error, error) {
	if !cfg.PyroscopeEnabled {
		logger.Debug("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profileTags(cfg, command),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return profiler.Stop, nil
}

func serviceName(base, command string) string {
	base = strings.TrimSpace(base)
	if command == "" || strings.HasSuffix(base, "-"+command) {
		return base
	}
	return base + "-" + command
}

func profileTags(cfg config.Config, command string) map[string]string {
	return map[string]string{
		"env":     cfg.AppEnv,
		"service": cfg.ServiceName,
		"command": command,
		"pbp":     cfg.PBPFormat,
		"version": cfg.ServiceVersion,
	}
}
