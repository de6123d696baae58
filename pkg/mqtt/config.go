package mqtt

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ClientConfig holds the configuration for creating a new MQTT Client.
type ClientConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string

	// KeepAlive in seconds. Default is 60.
	KeepAlive uint16

	// ConnectTimeout for the initial connection. Default is 5s.
	ConnectTimeout time.Duration

	// SessionExpiry in seconds. Zero ends the session on disconnect.
	SessionExpiry uint32

	// CleanStart indicates whether to start a clean session.
	CleanStart bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// HandlerTimeout bounds the context passed to each MessageHandler call.
	// Default is 30s.
	HandlerTimeout time.Duration

	// InboxSize is the number of messages queued per subscription before
	// the connection reader waits for the handler. Default is 256.
	InboxSize int

	// ReconnectBackoff is the pause between connection attempts. Default is 3s.
	ReconnectBackoff time.Duration

	// OnConnectionChange, if set, is called on every transition between
	// connected and disconnected.
	OnConnectionChange func(connected bool)

	// Will message published by the broker if the client drops.
	WillTopic   string
	WillPayload []byte
	WillQoS     byte
	WillRetain  bool
}

// setDefaultConfig applies safe default values to the configuration.
func setDefaultConfig(cfg *ClientConfig) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = 60
	}

	if cfg.HandlerTimeout == 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}

	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 256
	}

	if cfg.ReconnectBackoff == 0 {
		cfg.ReconnectBackoff = 3 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BrokerURL == "" {
		return errors.New("broker url is required")
	}
	u, err := url.Parse(c.BrokerURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("broker url %q must include scheme and host", c.BrokerURL)
	}
	if c.WillQoS > 2 {
		return fmt.Errorf("will qos %d out of range", c.WillQoS)
	}
	return nil
}
