// Command javacomplete-lsp is a Language Server Protocol server offering
// type-directed Java member completion.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/lsp"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "javacomplete-lsp",
		Version: version,
		Usage:   "Java member completion over LSP (stdio)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "type model YAML for every document (overrides .javacomplete.yaml)",
				Sources: cli.EnvVars("JAVACOMPLETE_MODEL"),
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "reload model files when they change on disk",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "serve Prometheus metrics on this address (e.g. :9464)",
				Sources: cli.EnvVars("JAVACOMPLETE_METRICS_ADDR"),
			},
		},
		Action: runServer,
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	// Set up logging to stderr (stdout is for LSP communication)
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if cmd.Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting javacomplete-lsp server", zap.String("version", version))

	if addr := metricsAddr(cmd.String("metrics-addr")); addr != "" {
		stop := serveMetrics(addr, logger)
		defer stop()
	}

	opts := []lsp.Option{lsp.WithWatch(cmd.Bool("watch"))}
	if path := cmd.String("model"); path != "" {
		opts = append(opts, lsp.WithModel(path))
	}

	return run(ctx, logger, os.Stdin, os.Stdout, opts...)
}

func run(ctx context.Context, logger *zap.Logger, in io.Reader, out io.Writer, opts ...lsp.Option) error {
	// Create a JSON-RPC stream connection over stdio
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	// Create a client to send notifications to the editor
	client := protocol.ClientDispatcher(conn, logger)

	server := lsp.NewServer(client, logger, opts...)

	conn.Go(ctx, protocol.ServerHandler(server, nil))

	<-conn.Done()

	return conn.Err()
}

// metricsAddr falls back to the metricsAddr of the config found from the
// working directory.
func metricsAddr(flag string) string {
	if flag != "" {
		return flag
	}

	cfg, err := javacomplete.LoadConfig(".")
	if err != nil {
		return ""
	}

	return cfg.MetricsAddr
}

// serveMetrics exposes /metrics on addr until the returned func is called.
func serveMetrics(addr string, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Metrics server starting", zap.String("addr", addr))

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
