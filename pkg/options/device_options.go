package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

var _ IOptions = (*DeviceOptions)(nil)

// DeviceOptions holds the connection liveness policy and the devices the
// manager connects to on startup.
type DeviceOptions struct {
	// KeepAliveInterval is the watchdog period.
	KeepAliveInterval time.Duration `json:"keep-alive-interval" mapstructure:"keep-alive-interval"`

	// ConnectionTimeout is the silence after which a connected device is
	// considered lost.
	ConnectionTimeout time.Duration `json:"connection-timeout" mapstructure:"connection-timeout"`

	// ReconnectionInterval spaces reconfiguration probes to a lost device.
	ReconnectionInterval time.Duration `json:"reconnection-interval" mapstructure:"reconnection-interval"`

	// ValidateMessagesOnReceive rejects inbound messages that fail validation.
	ValidateMessagesOnReceive bool `json:"validate-messages-on-receive" mapstructure:"validate-messages-on-receive"`

	// SendTimeout bounds every outbound transport send.
	SendTimeout time.Duration `json:"send-timeout" mapstructure:"send-timeout"`

	// EventDeliveryTimeout bounds how long a slow subscriber may hold up an event.
	EventDeliveryTimeout time.Duration `json:"event-delivery-timeout" mapstructure:"event-delivery-timeout"`

	// Parallelism caps the number of devices assessed concurrently per tick.
	Parallelism int `json:"parallelism" mapstructure:"parallelism"`

	// RequestorID is stamped on every outbound message.
	RequestorID string `json:"requestor-id" mapstructure:"requestor-id"`

	// Subscriptions are the report categories requested from every device.
	Subscriptions []string `json:"subscriptions" mapstructure:"subscriptions"`

	// Devices lists the endpoints connected on startup, as "endpoint" or "endpoint@peer".
	Devices []string `json:"devices" mapstructure:"devices"`
}

// NewDeviceOptions creates a DeviceOptions object with default parameters.
func NewDeviceOptions() *DeviceOptions {
	categories := mrsv1.DefaultReportCategories()
	subs := make([]string, 0, len(categories))
	for _, c := range categories {
		subs = append(subs, string(c))
	}

	return &DeviceOptions{
		KeepAliveInterval:         time.Second,
		ConnectionTimeout:         5 * time.Second,
		ReconnectionInterval:      10 * time.Second,
		ValidateMessagesOnReceive: true,
		SendTimeout:               5 * time.Second,
		EventDeliveryTimeout:      100 * time.Millisecond,
		Parallelism:               32,
		RequestorID:               "sensorlink",
		Subscriptions:             subs,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *DeviceOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.KeepAliveInterval < time.Second {
		errors = append(errors, fmt.Errorf("--device.keep-alive-interval must be at least 1s, got %s", o.KeepAliveInterval))
	}
	if o.ConnectionTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--device.connection-timeout must be positive"))
	}
	if o.ReconnectionInterval <= 0 {
		errors = append(errors, fmt.Errorf("--device.reconnection-interval must be positive"))
	}
	if o.SendTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--device.send-timeout must be positive"))
	}
	if o.Parallelism < 1 {
		errors = append(errors, fmt.Errorf("--device.parallelism must be at least 1"))
	}
	if _, err := o.ReportCategories(); err != nil {
		errors = append(errors, err)
	}
	for _, d := range o.Devices {
		endpoint, _ := SplitDevice(d)
		if endpoint == "" || strings.ContainsAny(endpoint, "/+#") {
			errors = append(errors, fmt.Errorf("--device.devices entry %q is not a valid endpoint", d))
		}
	}

	return errors
}

// AddFlags adds flags related to device liveness to the specified FlagSet.
func (o *DeviceOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.KeepAliveInterval, "device.keep-alive-interval", o.KeepAliveInterval, "Watchdog period; keep-alives are sent once per period.")
	fs.DurationVar(&o.ConnectionTimeout, "device.connection-timeout", o.ConnectionTimeout, "Silence after which a connected device is considered lost.")
	fs.DurationVar(&o.ReconnectionInterval, "device.reconnection-interval", o.ReconnectionInterval, "Minimum time between reconfiguration probes to a lost device.")
	fs.BoolVar(&o.ValidateMessagesOnReceive, "device.validate-messages-on-receive", o.ValidateMessagesOnReceive, "Reject inbound messages that fail validation.")
	fs.DurationVar(&o.SendTimeout, "device.send-timeout", o.SendTimeout, "Timeout applied to each outbound message.")
	fs.DurationVar(&o.EventDeliveryTimeout, "device.event-delivery-timeout", o.EventDeliveryTimeout, "How long an event waits on a slow subscriber before it is dropped.")
	fs.IntVar(&o.Parallelism, "device.parallelism", o.Parallelism, "Maximum number of devices assessed concurrently per watchdog tick.")
	fs.StringVar(&o.RequestorID, "device.requestor-id", o.RequestorID, "Requestor identification stamped on outbound messages.")
	fs.StringSliceVar(&o.Subscriptions, "device.subscriptions", o.Subscriptions, "Report categories requested from every device.")
	fs.StringSliceVar(&o.Devices, "device.devices", o.Devices, "Devices connected on startup, as endpoint or endpoint@peer.")
}

// ReportCategories parses Subscriptions.
func (o *DeviceOptions) ReportCategories() ([]mrsv1.ReportCategory, error) {
	out := make([]mrsv1.ReportCategory, 0, len(o.Subscriptions))
	for _, s := range o.Subscriptions {
		c, err := mrsv1.ParseReportCategory(s)
		if err != nil {
			return nil, fmt.Errorf("--device.subscriptions: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// SplitDevice splits an "endpoint@peer" entry. The peer is empty when absent.
func SplitDevice(s string) (endpoint, peer string) {
	endpoint, peer, _ = strings.Cut(strings.TrimSpace(s), "@")
	return endpoint, peer
}
