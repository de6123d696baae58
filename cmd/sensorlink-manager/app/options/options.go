package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/sensorlink/internal/sensorlink"
	"github.com/autopeer-io/sensorlink/pkg/app"
	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

type ManagerOptions struct {
	MqttOptions   *options.MqttOptions   `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions   *options.HttpOptions   `json:"http" mapstructure:"http"`
	DeviceOptions *options.DeviceOptions `json:"device" mapstructure:"device"`
	Log           *log.Options           `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*ManagerOptions)(nil)

func NewManagerOptions() *ManagerOptions {
	o := &ManagerOptions{
		MqttOptions:   options.NewMqttOptions(),
		HttpOptions:   options.NewHttpOptions(),
		DeviceOptions: options.NewDeviceOptions(),
		Log:           log.NewOptions(),
	}

	return o
}

func (o *ManagerOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.DeviceOptions.AddFlags(fss.FlagSet("device"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

// Complete stamps outbound messages with the MQTT client id when no
// requestor id was configured.
func (o *ManagerOptions) Complete() error {
	if o.DeviceOptions.RequestorID == "" {
		o.DeviceOptions.RequestorID = o.MqttOptions.ToClientConfig().ClientID
	}
	return nil
}

func (o *ManagerOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.DeviceOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *ManagerOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *ManagerOptions) Config() (*sensorlink.Config, error) {
	return &sensorlink.Config{
		MqttOptions:   o.MqttOptions,
		HttpOptions:   o.HttpOptions,
		DeviceOptions: o.DeviceOptions,
	}, nil
}
