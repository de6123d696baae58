package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/sensorlink/internal/simulator"
	"github.com/autopeer-io/sensorlink/pkg/app"
	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

type SimulatorOptions struct {
	MqttOptions      *options.MqttOptions      `json:"mqtt" mapstructure:"mqtt"`
	SimulatorOptions *options.SimulatorOptions `json:"simulator" mapstructure:"simulator"`
	Log              *log.Options              `json:"log" mapstructure:"log"`
}

var _ app.CliOptions = (*SimulatorOptions)(nil)

func NewSimulatorOptions() *SimulatorOptions {
	o := &SimulatorOptions{
		MqttOptions:      options.NewMqttOptions(),
		SimulatorOptions: options.NewSimulatorOptions(),
		Log:              log.NewOptions(),
	}

	return o
}

func (o *SimulatorOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.SimulatorOptions.AddFlags(fss.FlagSet("simulator"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *SimulatorOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.SimulatorOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *SimulatorOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *SimulatorOptions) Config() (*simulator.Config, error) {
	return &simulator.Config{
		MqttOptions:      o.MqttOptions,
		SimulatorOptions: o.SimulatorOptions,
	}, nil
}
