package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SimulatorOptions)(nil)

// SimulatorOptions describes the device played by the simulator.
type SimulatorOptions struct {
	// Endpoint is the transport endpoint the simulated device listens on.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// DeviceName is reported in every message.
	DeviceName string `json:"device-name" mapstructure:"device-name"`

	// Sensors lists the simulated sensors as TYPE/ID.
	Sensors []string `json:"sensors" mapstructure:"sensors"`

	// StatusInterval spaces periodic status reports.
	StatusInterval time.Duration `json:"status-interval" mapstructure:"status-interval"`
}

// NewSimulatorOptions creates a SimulatorOptions object with default parameters.
func NewSimulatorOptions() *SimulatorOptions {
	return &SimulatorOptions{
		Endpoint:       "sim-01",
		DeviceName:     "Simulated Mast",
		Sensors:        []string{"Pedestal/1", "FLIR/1", "DayCameraColor/1", "VideoSwitch/1"},
		StatusInterval: 2 * time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *SimulatorOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.Endpoint == "" || strings.ContainsAny(o.Endpoint, "/+#@") {
		errors = append(errors, fmt.Errorf("--simulator.endpoint %q is not a valid endpoint", o.Endpoint))
	}
	if o.StatusInterval < 100*time.Millisecond {
		errors = append(errors, fmt.Errorf("--simulator.status-interval must be at least 100ms"))
	}
	if len(o.Sensors) == 0 {
		errors = append(errors, fmt.Errorf("--simulator.sensors must not be empty"))
	}
	for _, s := range o.Sensors {
		if typ, id, ok := strings.Cut(s, "/"); !ok || typ == "" || id == "" {
			errors = append(errors, fmt.Errorf("--simulator.sensors entry %q must be TYPE/ID", s))
		}
	}

	return errors
}

// AddFlags adds flags for SimulatorOptions to the specified FlagSet.
func (o *SimulatorOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, "simulator.endpoint", o.Endpoint, "Endpoint the simulated device listens on.")
	fs.StringVar(&o.DeviceName, "simulator.device-name", o.DeviceName, "Device name reported in every message.")
	fs.StringSliceVar(&o.Sensors, "simulator.sensors", o.Sensors, "Simulated sensors as TYPE/ID.")
	fs.DurationVar(&o.StatusInterval, "simulator.status-interval", o.StatusInterval, "Interval between periodic status reports.")
}
