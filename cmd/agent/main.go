// Command agent is the loongcollector-go process entry point: it builds the
// logger, the self-metrics registry (served on /metrics) and the shared
// TimeoutFlushManager, then waits for SIGINT/SIGTERM. It loads no
// configuration and starts no pipelines; the manager's flush callback only
// logs the expired key.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/loongcollector/agent/pkg/alarm"
	"github.com/loongcollector/agent/pkg/batch"
	"github.com/loongcollector/agent/pkg/logging"
	"github.com/loongcollector/agent/pkg/selfmetrics"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	metricsAddr := flag.String("metrics-addr", ":9411", "address to expose self-observability metrics on")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	selfmetrics.NewRegistry(reg)
	_ = alarm.NewRing(256)

	timeoutMgr := batch.NewTimeoutFlushManager(clock.New(), func(pipelineName, flusherNodeID string, key uint64) {
		logger.Debug("timeout flush fired", zap.String("pipeline", pipelineName), zap.String("flusher_node", flusherNodeID), zap.Uint64("key", key))
	}, logger)
	go timeoutMgr.Run()
	defer timeoutMgr.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("agent started", zap.String("metrics_addr", *metricsAddr))
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown error", zap.Error(err))
	}
}
