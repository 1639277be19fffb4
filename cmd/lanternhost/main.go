// Command lanternhost registers chain specifications with a light-client
// engine, submits JSON-RPC requests and prints the response stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lantern-dev/lanternhost/application/chainspec"
	"github.com/lantern-dev/lanternhost/application/hostconfig"
	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/ports"
	"github.com/lantern-dev/lanternhost/host"
	"github.com/lantern-dev/lanternhost/hostfuncs"
	"github.com/lantern-dev/lanternhost/infrastructure/loopback"
	"github.com/lantern-dev/lanternhost/infrastructure/wazero"
	"github.com/lantern-dev/lanternhost/log"
	"github.com/lantern-dev/lanternhost/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lanternhost: %v\n", err)
		os.Exit(1)
	}
}

// stringList collects repeated flag values.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func run() error {
	var (
		configPath    = flag.String("config", "", "path of a YAML configuration file")
		engineKind    = flag.String("engine", "", "engine backing: wasm or loopback")
		enginePath    = flag.String("engine-path", "", "path of the engine wasm binary")
		metricsListen = flag.String("metrics-listen", "", "expose prometheus metrics on this address")
		logLevel      = flag.String("log-level", "", "log level: debug, info, warn or error")
		specs         stringList
		requests      stringList
	)
	flag.Var(&specs, "spec", "path of a chain specification JSON file (repeatable)")
	flag.Var(&requests, "request", "JSON-RPC request to submit at startup (repeatable)")
	flag.Parse()

	cfg, err := buildConfig(*configPath, *engineKind, *enginePath, *metricsListen, *logLevel, specs, requests)
	if err != nil {
		return err
	}

	logger := log.Setup(log.WithLevel(cfg.SlogLevel()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewPromMetrics()
	if cfg.MetricsListen != "" {
		serveMetrics(ctx, cfg.MetricsListen, metrics, logger)
	}

	engine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	adapter, err := host.NewAdapter(engine,
		host.WithLogger(logger),
		host.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adapter.Close(closeCtx); err != nil {
			logger.Error("adapter shutdown failed", "error", err)
		}
	}()

	sessions, err := registerChains(ctx, cfg, adapter, logger)
	if err != nil {
		return err
	}

	// Requests go to the last registered chain: with a relay plus a
	// parachain, the parachain is the one being exercised.
	target := sessions[len(sessions)-1]
	for _, request := range cfg.Requests {
		if err := target.Submit(ctx, request); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
	}

	return pump(ctx, target, logger)
}

// buildConfig assembles the configuration from a file, flags, or both.
// Flags override file values.
func buildConfig(configPath, engineKind, enginePath, metricsListen, logLevel string, specs, requests []string) (*hostconfig.HostConfig, error) {
	var cfg *hostconfig.HostConfig
	if configPath != "" {
		loaded, err := hostconfig.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		base := hostconfig.Default()
		cfg = &base
	}

	if engineKind != "" {
		cfg.Engine = engineKind
	}
	if enginePath != "" {
		cfg.EnginePath = enginePath
	}
	if metricsListen != "" {
		cfg.MetricsListen = metricsListen
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	for _, spec := range specs {
		cfg.Chains = append(cfg.Chains, hostconfig.ChainEntry{Spec: spec})
	}
	if len(requests) > 0 {
		cfg.Requests = requests
	}
	if len(cfg.Requests) == 0 {
		cfg.Requests = []string{hostconfig.DefaultRequest}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine constructs the configured engine backing.
func buildEngine(ctx context.Context, cfg *hostconfig.HostConfig, logger *slog.Logger) (ports.Engine, error) {
	switch cfg.Engine {
	case hostconfig.EngineLoopback:
		return loopback.NewEngine(loopback.WithLogger(logger)), nil
	case hostconfig.EngineWASM:
		wasmBytes, err := os.ReadFile(cfg.EnginePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read engine binary: %w", err)
		}
		callbacks, err := hostfuncs.NewRegistry(
			hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
			hostfuncs.WithBundle(hostfuncs.LogBundle(logger)),
			hostfuncs.WithBundle(hostfuncs.ClockBundle()),
		)
		if err != nil {
			return nil, err
		}
		return wazero.NewEngine(ctx, wasmBytes,
			wazero.WithCallbacks(callbacks),
			wazero.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown engine backing %q", cfg.Engine)
	}
}

// registerChains loads and registers every configured chain, in order, so a
// parachain can name an already-registered relay.
func registerChains(ctx context.Context, cfg *hostconfig.HostConfig, adapter *host.Adapter, logger *slog.Logger) ([]*host.ChainSession, error) {
	loader := chainspec.NewLoader()
	sessions := make([]*host.ChainSession, 0, len(cfg.Chains))
	for _, entry := range cfg.Chains {
		doc, err := loader.LoadFile(entry.Spec)
		if err != nil {
			return nil, err
		}
		session, err := adapter.AddChain(ctx, doc.Raw)
		if err != nil {
			return nil, err
		}
		name := entry.Name
		if name == "" {
			name = doc.Spec.Name
		}
		logger.Info("chain ready", "chain", session.ID(), "name", name)
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// pump prints the session's responses until the context ends or the chain
// drains.
func pump(ctx context.Context, session *host.ChainSession, logger *slog.Logger) error {
	err := host.Pump(ctx, session, host.SinkFunc(func(ctx context.Context, chain entities.ChainID, response string) error {
		fmt.Printf("JSON-RPC response (%s): %s\n", chain, response)
		return nil
	}))
	if ctx.Err() != nil {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// serveMetrics exposes the prometheus endpoint until the context ends.
func serveMetrics(ctx context.Context, addr string, metrics *observability.PromMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
