package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/sensorlink/pkg/log"
)

// Server defines the common interface for all sub-servers (mqtt, http, watchdog).
type Server interface {
	Start(ctx context.Context) error
}

// ServerFunc adapts a blocking function to the Server interface.
type ServerFunc func(ctx context.Context) error

func (f ServerFunc) Start(ctx context.Context) error {
	return f(ctx)
}

// Manager manages the lifecycle of all protocol servers.
type Manager struct {
	servers []Server
}

// NewManager creates a new server manager over the given servers.
func NewManager(servers ...Server) *Manager {
	return &Manager{
		servers: servers,
	}
}

// Start launches all servers in parallel and waits for termination.
// The first server to fail cancels the others.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range m.servers {
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting...", "count", len(m.servers))
	return g.Wait()
}
