package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/sensorlink/internal/device"
	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	middleware "github.com/autopeer-io/sensorlink/internal/pkg/middleware/http"
	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

// Server serves the device API, health probes and metrics.
type Server struct {
	server  *http.Server
	options *options.HttpOptions
	manager *device.Manager
	ready   func() bool
}

// NewServer returns a Server over manager. ready backs the readiness probe;
// nil means always ready.
func NewServer(opts *options.HttpOptions, manager *device.Manager, ready func() bool) *Server {
	if ready == nil {
		ready = func() bool { return true }
	}
	s := &Server{
		options: opts,
		manager: manager,
		ready:   ready,
	}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging)

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Readiness Probe: the broker connection must be up.
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("mqtt not connected"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// The event stream is long-lived and bypasses the request timeout.
	r.HandleFunc("/api/v1/devices/{endpoint}/events", s.streamEvents).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Timeout(s.options.RequestTimeout))
	api.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.connectDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{endpoint}", s.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{endpoint}", s.disconnectDevice).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{endpoint}/status", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/devices/{endpoint}/commands", s.postCommand).Methods(http.MethodPost)

	return r
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen(s.options.Network, s.server.Addr)
	if err != nil {
		return err
	}
	log.Info("Starting HTTP Server", "addr", ln.Addr().String())

	// Requests, event streams included, end with ctx.
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
