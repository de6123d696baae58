package device

import (
	"fmt"
	"strings"
)

// Identity names a device by the transport endpoint it is reached at.
// Peer optionally names the gateway or host the endpoint sits behind; two
// devices with the same endpoint and different peers are distinct.
type Identity struct {
	Endpoint string `json:"endpoint"`
	Peer     string `json:"peer,omitempty"`
}

func (id Identity) String() string {
	if id.Peer == "" {
		return id.Endpoint
	}
	return id.Endpoint + "@" + id.Peer
}

// Validate checks that the endpoint can be used as a single topic level.
func (id Identity) Validate() error {
	if id.Endpoint == "" {
		return fmt.Errorf("device endpoint is required")
	}
	if strings.ContainsAny(id.Endpoint, "/+#") {
		return fmt.Errorf("device endpoint %q must not contain '/', '+' or '#'", id.Endpoint)
	}
	if strings.ContainsAny(id.Peer, "/+#@") {
		return fmt.Errorf("device peer %q must not contain '/', '+', '#' or '@'", id.Peer)
	}
	return nil
}
