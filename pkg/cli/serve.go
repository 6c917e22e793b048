package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/swaggitor/swaggitor/pkg/console"
	"github.com/swaggitor/swaggitor/pkg/lsp"
	"github.com/swaggitor/swaggitor/pkg/metrics"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

// ServeOptions configures RunServe
type ServeOptions struct {
	Config pipeline.Config
	// MetricsAddr enables the Prometheus endpoint at /metrics when set
	MetricsAddr string
	Verbose     bool
	Version     string
	// In and Out carry the protocol; stdin and stdout by default
	In  io.Reader
	Out io.Writer
}

// RunServe runs the language server until the client exits
func RunServe(ctx context.Context, opts ServeOptions) error {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	serverOpts := lsp.ServerOptions{
		Config:  opts.Config,
		Verbose: opts.Verbose,
		Version: opts.Version,
	}
	if opts.MetricsAddr != "" {
		collector := metrics.NewCollector(nil)
		shutdown, err := serveMetrics(opts.MetricsAddr, collector)
		if err != nil {
			return err
		}
		defer shutdown()
		serverOpts.Observer = collector
	}

	if opts.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Serving Swagger diagnostics over stdio"))
	}
	err := lsp.NewServer(in, out, serverOpts).Run(ctx)
	switch {
	case err == nil, errors.Is(err, lsp.ErrExit):
		return nil
	case errors.Is(err, lsp.ErrExitWithoutShutdown):
		return fmt.Errorf("client exited without shutdown")
	default:
		return fmt.Errorf("language server failed: %w", err)
	}
}

// serveMetrics starts the metrics endpoint and returns a function stopping it
func serveMetrics(addr string, collector *metrics.Collector) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(fmt.Sprintf("metrics server failed: %v", err)))
		}
	}()
	fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Metrics available at http://%s/metrics", listener.Addr())))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
