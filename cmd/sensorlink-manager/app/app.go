package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/sensorlink/cmd/sensorlink-manager/app/options"
	"github.com/autopeer-io/sensorlink/internal/sensorlink"
	"github.com/autopeer-io/sensorlink/pkg/app"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

const (
	commandName = "sensorlink-manager"
	commandDesc = `The sensorlink manager keeps MRS sensor devices connected over MQTT.
It sends keep-alives, detects lost devices, reconfigures them when they come
back and exposes devices, their merged status and commands over HTTP.`
)

func NewApp() *app.App {
	opts := options.NewManagerOptions()
	var running atomic.Pointer[sensorlink.Server]

	application := app.NewApp(
		commandName,
		"Launch a sensorlink manager",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts, &running)),
		app.WithConfigChangeFunc(reload(opts, &running)),
	)
	return application
}

func run(opts *options.ManagerOptions, running *atomic.Pointer[sensorlink.Server]) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewServer()
		if err != nil {
			return fmt.Errorf("failed to create sensorlink server: %w", err)
		}
		running.Store(server)

		return server.Run(ctx)
	}
}

// reload applies the device section of a changed config file. MQTT and
// HTTP settings need a restart.
func reload(opts *options.ManagerOptions, running *atomic.Pointer[sensorlink.Server]) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		server := running.Load()
		if server == nil {
			return
		}
		if err := server.ApplyDeviceOptions(context.Background(), opts.DeviceOptions); err != nil {
			log.Error(err, "Failed to apply reloaded device options", "file", e.Name)
		}
	}
}
