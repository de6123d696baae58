package options

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HttpOptions)(nil)

// listenNetworks are the networks accepted by net.Listen for a stream server.
var listenNetworks = []string{"tcp", "tcp4", "tcp6", "unix"}

// HttpOptions configures the device API, health and metrics server.
type HttpOptions struct {
	// Network is one of tcp, tcp4, tcp6 or unix.
	Network string `json:"network" mapstructure:"network"`

	// Addr is host:port for tcp networks and a socket path for unix.
	Addr string `json:"addr" mapstructure:"addr"`

	// RequestTimeout bounds the /api/v1 handlers. Event streams are exempt.
	RequestTimeout time.Duration `json:"request-timeout" mapstructure:"request-timeout"`

	ReadHeaderTimeout time.Duration `json:"read-header-timeout" mapstructure:"read-header-timeout"`

	// ShutdownTimeout is how long in-flight requests get to finish on exit.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewHttpOptions returns the defaults: all interfaces on port 8080.
func NewHttpOptions() *HttpOptions {
	return &HttpOptions{
		Network:           "tcp",
		Addr:              "0.0.0.0:8080",
		RequestTimeout:    30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

func (o *HttpOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch {
	case !slices.Contains(listenNetworks, o.Network):
		errs = append(errs, fmt.Errorf("http network %q must be one of %v", o.Network, listenNetworks))
	case o.Network == "unix":
		if o.Addr == "" {
			errs = append(errs, errors.New("http addr must be a socket path for the unix network"))
		}
	default:
		if err := ValidateAddress(o.Addr); err != nil {
			errs = append(errs, fmt.Errorf("http addr: %w", err))
		}
	}

	for name, d := range map[string]time.Duration{
		"request-timeout":     o.RequestTimeout,
		"read-header-timeout": o.ReadHeaderTimeout,
		"shutdown-timeout":    o.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("http %s must be positive, got %s", name, d))
		}
	}
	return errs
}

func (o *HttpOptions) AddFlags(fs *pflag.FlagSet, _ ...string) {
	fs.StringVar(&o.Network, "http.network", o.Network, "Network of the HTTP listener: tcp, tcp4, tcp6 or unix.")
	fs.StringVar(&o.Addr, "http.addr", o.Addr, "HTTP listen address, host:port or a unix socket path.")
	fs.DurationVar(&o.RequestTimeout, "http.request-timeout", o.RequestTimeout, "Timeout of device API requests. Event streams are not bounded.")
	fs.DurationVar(&o.ReadHeaderTimeout, "http.read-header-timeout", o.ReadHeaderTimeout, "Time allowed to read request headers.")
	fs.DurationVar(&o.ShutdownTimeout, "http.shutdown-timeout", o.ShutdownTimeout, "Time in-flight requests get to finish on shutdown.")
}
