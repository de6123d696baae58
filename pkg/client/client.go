// Package client is a Go client for the sensorlink manager REST API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
)

// DefaultTimeout bounds every request except event streams.
const DefaultTimeout = 30 * time.Second

// Client talks to one sensorlink manager.
type Client struct {
	base   *url.URL
	http   *http.Client
	stream *http.Client
}

// New returns a client for the manager at server, e.g. "http://localhost:8080".
func New(server string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server address %q must start with http:// or https://", server)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		stream: &http.Client{},
	}, nil
}

// APIError is a non-2xx response from the manager.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.StatusCode, strings.Join(e.Details, "; "))
}

// IsNotFound reports whether err is a 404 from the manager.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ListDevices returns every supervised device.
func (c *Client) ListDevices(ctx context.Context) (*apiv1.DeviceList, error) {
	var out apiv1.DeviceList
	if err := c.do(ctx, http.MethodGet, c.devicePath(""), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDevice returns the device at endpoint. An empty peer matches any peer.
func (c *Client) GetDevice(ctx context.Context, endpoint, peer string) (*apiv1.Device, error) {
	var out apiv1.Device
	if err := c.do(ctx, http.MethodGet, c.devicePath(endpoint), peer, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatus returns the cumulative and the last status of the device.
func (c *Client) GetStatus(ctx context.Context, endpoint, peer string) (*apiv1.DeviceStatus, error) {
	var out apiv1.DeviceStatus
	if err := c.do(ctx, http.MethodGet, c.devicePath(endpoint, "status"), peer, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect asks the manager to start supervising a device.
func (c *Client) Connect(ctx context.Context, req *apiv1.ConnectRequest) (*apiv1.Device, error) {
	var out apiv1.Device
	if err := c.do(ctx, http.MethodPost, c.devicePath(""), "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disconnect stops supervising the device.
func (c *Client) Disconnect(ctx context.Context, endpoint, peer string) error {
	return c.do(ctx, http.MethodDelete, c.devicePath(endpoint), peer, nil, nil)
}

// SendCommand asks the manager to send a command to the device.
func (c *Client) SendCommand(ctx context.Context, endpoint, peer string, req *apiv1.CommandRequest) error {
	return c.do(ctx, http.MethodPost, c.devicePath(endpoint, "commands"), peer, req, nil)
}

// WatchEvents streams the device's events to fn until ctx is done, the
// stream ends or fn returns an error. A stream ended by the manager
// returns nil.
func (c *Client) WatchEvents(ctx context.Context, endpoint, peer string, fn func(apiv1.Event) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.devicePath(endpoint, "events"), peer, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var ev apiv1.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("invalid event: %w", err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (c *Client) devicePath(endpoint string, sub ...string) string {
	p := "/api/v1/devices"
	if endpoint != "" {
		p += "/" + url.PathEscape(endpoint)
	}
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

func (c *Client) newRequest(ctx context.Context, method, path, peer string, body any) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if peer != "" {
		u.RawQuery = url.Values{"peer": []string{peer}}.Encode()
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path, peer string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, peer, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body apiv1.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Details = body.Details
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
