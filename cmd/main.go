package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/engine"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/http/api"
	app "github.com/shuji-bonji/xcomet-mcp-server/internal/app"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/config"
	"github.com/shuji-bonji/xcomet-mcp-server/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Minute
	writeTimeout      = 10 * time.Minute
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithModelName(cfg.Model),
		app.WithEngineFactory(engineFactory(cfg)),
		app.WithDefaultBatchSize(cfg.BatchSize),
		app.WithCacheSize(cfg.CacheSize),
		app.WithLatencyRange(time.Duration(cfg.LatencyMinMS)*time.Millisecond, time.Duration(cfg.LatencyMaxMS)*time.Millisecond),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	if cfg.Preload {
		loggerInstance.Info(ctx, "preloading model", logger.String("model", cfg.Model))
		if err := svc.Preload(ctx); err != nil {
			os.Stderr.WriteString("failed to preload model: " + err.Error() + "\n")
			return
		}
	}

	// HTTP mux and routes. POST /shutdown cancels the root context, so
	// it shares the signal-driven shutdown path.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, stop)
	apiServer.Register(ctx, mux)

	// Bind before serving so a zero port resolves to a real one.
	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		os.Stderr.WriteString("failed to listen: " + err.Error() + "\n")
		return
	}
	port := listener.Addr().(*net.TCPAddr).Port

	// The port announcement is the only stdout output; supervising
	// processes parse it to find the chosen port.
	announcePort(port)

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("host", cfg.Host),
			logger.Int("port", port),
			logger.String("engine", cfg.Engine),
		)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// engineFactory picks the scoring backend from configuration. When nil
// is returned the service falls back to its built-in simulated engine.
func engineFactory(cfg *config.Config) engine.Factory {
	if cfg.Engine != config.EngineONNX {
		return nil
	}
	return func(ctx context.Context) (engine.Engine, error) {
		return engine.NewONNX(ctx, cfg.Model, cfg.ModelDir, cfg.MaxSessions)
	}
}

// announcePort prints the chosen listen port as a single JSON line on
// stdout.
func announcePort(port int) {
	line, err := json.Marshal(map[string]int{"port": port})
	if err != nil {
		fmt.Printf("{\"port\": %d}\n", port)
		return
	}
	fmt.Println(string(line))
}
