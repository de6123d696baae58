package sensorlink

import (
	"context"
	"errors"
	"time"

	"github.com/autopeer-io/sensorlink/internal/device"
	"github.com/autopeer-io/sensorlink/internal/server"
	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

// connectionWaiter is the part of the MQTT client the startup bootstrap needs.
type connectionWaiter interface {
	AwaitConnection(ctx context.Context) error
}

// Server is the sensorlink manager process.
type Server struct {
	client  connectionWaiter
	devices *device.Manager
	startup []string
	servers *server.Manager
}

// Devices returns the device manager.
func (s *Server) Devices() *device.Manager {
	return s.devices
}

// Run starts every server, connects the startup devices once the broker is
// reachable and blocks until ctx is done or a server fails.
func (s *Server) Run(ctx context.Context) error {
	log.Info("Starting sensorlink manager", "startupDevices", len(s.startup))

	go s.bootstrap(ctx)

	err := s.servers.Start(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.devices.Close(closeCtx)
	log.Info("Sensorlink manager stopped")

	return err
}

// ApplyDeviceOptions applies a reloaded configuration: the liveness policy
// is replaced and newly listed startup devices are connected. Devices that
// were removed from the list stay connected.
func (s *Server) ApplyDeviceOptions(ctx context.Context, opts *options.DeviceOptions) error {
	if err := s.devices.SetPolicy(PolicyFrom(opts)); err != nil {
		return err
	}
	connectDevices(ctx, s.devices, opts.Devices)
	return nil
}

func (s *Server) bootstrap(ctx context.Context) {
	if len(s.startup) == 0 {
		return
	}
	if err := s.client.AwaitConnection(ctx); err != nil {
		return
	}
	connectDevices(ctx, s.devices, s.startup)
}

// connectDevices connects every "endpoint[@peer]" entry that is not
// registered yet. Failures are logged; the watchdog keeps probing devices
// whose first configuration request was lost.
func connectDevices(ctx context.Context, devices *device.Manager, entries []string) int {
	connected := 0
	for _, entry := range entries {
		endpoint, peer := options.SplitDevice(entry)
		id := device.Identity{Endpoint: endpoint, Peer: peer}

		if _, err := devices.Connect(ctx, id, nil); err != nil {
			if errors.Is(err, device.ErrAlreadyConnected) {
				continue
			}
			log.Error(err, "Failed to connect startup device", "device", id.String())
			continue
		}
		connected++
	}
	return connected
}
