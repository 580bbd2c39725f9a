package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/formtree"
	httpAdapter "github.com/aretw0/formtree/pkg/adapters/http"
	"github.com/aretw0/formtree/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// NewServeHandler builds the form and mounts the form API at / and
// Prometheus metrics at /metrics. The caller closes the returned session.
func NewServeHandler(opts Options) (http.Handler, *Session, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, nil, err
	}
	metrics, err := observability.NewMetrics(reg, "formtree")
	if err != nil {
		return nil, nil, err
	}

	s, err := createSession(opts, metrics.Hooks())
	if err != nil {
		return nil, nil, err
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/", httpAdapter.NewHandler(s.Root,
		httpAdapter.WithLogger(s.Logger),
		httpAdapter.WithSettleTimeout(opts.timeout()),
	))
	return r, s, nil
}

// Serve runs the HTTP server on l until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, opts Options, l net.Listener, w io.Writer) error {
	handler, s, err := NewServeHandler(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	// Request contexts derive from ctx so event streams end on shutdown.
	srv := &http.Server{
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "formtree %s serving %s on %s", strings.TrimSpace(formtree.Version), opts.DefinitionPath, l.Addr())
		serverErrors <- srv.Serve(l)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.Logger.Info("shutting down", "cause", context.Cause(ctx))

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(w, "server stopped gracefully")
		return nil
	}
}
