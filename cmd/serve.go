package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nanw1103/yumako/internal/fstore"
	"github.com/nanw1103/yumako/internal/server"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	serveAddr        string
	serveDir         string
	serveCapacity    int
	serveMetricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a key-value store over the Redis protocol",
	Long: `Run a small cache server that speaks the Redis wire protocol, so
redis-cli and any Redis client library can talk to it.

By default keys live in RAM; --capacity bounds them with
least-recently-used eviction. With --dir the server instead reads and
writes plain text files in a directory, which makes stored values
greppable and survives restarts.

Supported commands: PING, ECHO, SET, GET, EXISTS, DEL, KEYS, DBSIZE,
FLUSHDB, QUIT.

Examples:
  # Volatile cache, at most 10000 keys
  yumako serve --capacity 10000

  # Expose a directory of text files
  yumako serve --dir ./data

  # With a Prometheus metrics endpoint
  yumako serve --capacity 10000 --metrics-addr :9091

  # Talk to it
  redis-cli -p 6389 set greeting hello
  redis-cli -p 6389 get greeting`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "Listen address")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "Serve this directory as a text store instead of RAM")
	serveCmd.Flags().IntVar(&serveCapacity, "capacity", 0, "Key bound for the in-memory backend (0 = unbounded)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9091)")
}

func runServe(cmd *cobra.Command, args []string) error {
	backend, err := buildServeBackend(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle Ctrl+C gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		render.Info("\nShutting down...")
		cancel()
	}()

	if serveMetricsAddr != "" {
		go serveMetrics(ctx, serveMetricsAddr)
	}

	return server.New(serveAddr, backend).Run(ctx)
}

func buildServeBackend(cmd *cobra.Command) (server.Backend, error) {
	if serveDir != "" {
		if cmd.Flags().Changed("capacity") {
			return nil, fmt.Errorf("--capacity bounds the in-memory backend and cannot be combined with --dir")
		}
		store, err := fstore.Open(serveDir, fstore.WithFormat("text"))
		if err != nil {
			return nil, err
		}
		render.Status("Serving text store %s", serveDir)
		return server.NewStoreBackend(store), nil
	}

	if serveCapacity > 0 {
		render.Status("Serving an in-memory cache of up to %d keys", serveCapacity)
	} else {
		render.Status("Serving an unbounded in-memory cache")
	}
	return server.NewMemoryBackend(serveCapacity)
}

// serveMetrics exposes the Prometheus registry until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	render.Status("Metrics on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		render.Warning("Metrics server stopped: %v", err)
	}
}
