package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/sensorlink/cmd/sensorlink-simulator/app/options"
	"github.com/autopeer-io/sensorlink/pkg/app"
)

const (
	commandName = "sensorlink-simulator"
	commandDesc = `The sensorlink simulator plays an MRS device over MQTT. It answers
configuration and subscription requests, executes and echoes commands and
pushes status reports, so a sensorlink manager can be exercised without
hardware.`
)

func NewApp() *app.App {
	opts := options.NewSimulatorOptions()
	application := app.NewApp(
		commandName,
		"Launch a simulated MRS device",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.SimulatorOptions) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		sim, err := cfg.NewSimulator()
		if err != nil {
			return fmt.Errorf("failed to create simulator: %w", err)
		}

		return sim.Run(ctx)
	}
}
