// Package adapter turns typed message handlers into raw MQTT payload handlers.
package adapter

import (
	"context"
	"fmt"

	"github.com/autopeer-io/sensorlink/internal/transport/codec"
)

// HandlerFunc handles a raw payload received from the device at endpoint.
type HandlerFunc func(ctx context.Context, endpoint string, payload []byte) error

// TypedHandlerFunc handles a decoded message received from the device at endpoint.
type TypedHandlerFunc[T any] func(ctx context.Context, endpoint string, msg *T) error

// DecodeError reports a payload that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("payload decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Handler decodes payloads into T before calling handler.
func Handler[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx context.Context, endpoint string, payload []byte) error {
		msg, err := codec.Decode[T](payload)
		if err != nil {
			return &DecodeError{Err: err}
		}
		return handler(ctx, endpoint, msg)
	}
}
