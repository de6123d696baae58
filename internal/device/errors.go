package device

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"

	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
)

var (
	// ErrDeviceNotFound is returned when no device is registered for an endpoint.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrAlreadyConnected is returned by Connect for an endpoint that is already registered.
	ErrAlreadyConnected = errors.New("device already connected")

	// ErrNoPedestal is returned by motion commands on a device without a pedestal.
	ErrNoPedestal = errors.New("no pedestal found on this device")

	// ErrNoTargetSensor is returned when a command needs a target sensor and
	// neither an explicit sensor nor an active sensor is available.
	ErrNoTargetSensor = errors.New("no target sensor: none given and no active sensor")

	// ErrSensorNotFound is returned when a command names a sensor the device
	// configuration does not list.
	ErrSensorNotFound = errors.New("sensor not found on this device")

	// ErrUnsupportedCommand is returned when the target sensor does not
	// list the command in its configuration.
	ErrUnsupportedCommand = errors.New("command not supported by sensor")

	// ErrDetached is returned when a device has been disconnected.
	ErrDetached = errors.New("device is disconnected")

	// ErrSendFailed wraps transport failures of outbound messages.
	ErrSendFailed = errors.New("send failed")
)

// ValidationError reports a message that failed validation.
type ValidationError struct {
	// Kind is the message kind, e.g. "status".
	Kind string
	Errs field.ErrorList
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s message: %v", e.Kind, e.Errs.ToAggregate())
}

func newValidationError(kind string, errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Errs: errs}
}

// IsPrecondition reports whether err is a command precondition failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoPedestal) ||
		errors.Is(err, ErrNoTargetSensor) ||
		errors.Is(err, ErrSensorNotFound) ||
		errors.Is(err, ErrUnsupportedCommand)
}

func requiredCommand() field.ErrorList {
	return field.ErrorList{field.Required(field.NewPath("command"), "a custom command requires a command body")}
}

func unsupportedVerb(v apiv1.CommandVerb) field.ErrorList {
	return field.ErrorList{field.NotSupported(field.NewPath("verb"), v, apiv1.SupportedCommandVerbs)}
}
