package device

import (
	"context"
	"fmt"

	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

// Outbound intents, used in metrics and logs.
const (
	IntentKeepAlive            = "keep_alive"
	IntentConfigurationRequest = "configuration_request"
	IntentSubscriptionRequest  = "subscription_request"
	IntentCommand              = "command"
)

// header builds the header of an outbound request.
func (d *Device) header() mrsv1.MessageHeader {
	d.mu.Lock()
	ident := d.deviceIdentification()
	d.mu.Unlock()

	return mrsv1.MessageHeader{
		MessageID:               d.deps.messageID(),
		MessageType:             mrsv1.MessageTypeRequest,
		RequestorIdentification: d.deps.requestorID,
		DeviceIdentification:    ident,
	}
}

type sendFunc func(ctx context.Context, intent string, msg any, fn func(ctx context.Context) error) error

// send is transmit for a device that is still registered. Once the device
// has been disconnected it returns ErrDetached without sending.
func (d *Device) send(ctx context.Context, intent string, msg any, fn func(ctx context.Context) error) error {
	d.mu.Lock()
	detached := d.detached
	d.mu.Unlock()
	if detached {
		return ErrDetached
	}
	return d.transmit(ctx, intent, msg, fn)
}

// transmit runs fn with the send timeout and publishes a MessageSent event on
// success. Failures are counted and logged and returned to the caller.
func (d *Device) transmit(ctx context.Context, intent string, msg any, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.deps.sendTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		metrics.SendFailuresTotal.WithLabelValues(intent).Inc()
		d.log.Error(err, "Failed to send message", "intent", intent)
		return fmt.Errorf("%w: %s to %s: %w", ErrSendFailed, intent, d.id, err)
	}
	metrics.MessagesSentTotal.WithLabelValues(intent).Inc()

	d.mu.Lock()
	d.enqueue(EventMessageSent, msg)
	d.mu.Unlock()
	d.flush()
	return nil
}

// SendKeepAlive sends a KeepAlive command to the device.
func (d *Device) SendKeepAlive(ctx context.Context) error {
	keepAlive := mrsv1.SimpleCommandKeepAlive
	msg := &mrsv1.CommandMessage{
		MessageHeader: d.header(),
		Command:       mrsv1.Command{Simple: &keepAlive},
	}
	return d.send(ctx, IntentKeepAlive, msg, func(ctx context.Context) error {
		return d.deps.transport.SendCommand(ctx, d.id, msg)
	})
}

// RequestConfiguration sends a configuration request. The watchdog uses it
// as the reconnection probe.
func (d *Device) RequestConfiguration(ctx context.Context) error {
	h := d.header()
	// The device has not told us who it is when we probe it.
	h.DeviceIdentification = nil
	msg := &mrsv1.DeviceConfiguration{MessageHeader: h}
	return d.send(ctx, IntentConfigurationRequest, msg, func(ctx context.Context) error {
		return d.deps.transport.SendConfigurationRequest(ctx, d.id, msg)
	})
}

// SendSubscriptionRequest asks the device to push the given report
// categories. An empty list unsubscribes from everything.
func (d *Device) SendSubscriptionRequest(ctx context.Context, categories []mrsv1.ReportCategory) error {
	return d.subscribe(ctx, categories, d.send)
}

// unsubscribe sends the empty subscription of a disconnect. The device is
// already detached at that point.
func (d *Device) unsubscribe(ctx context.Context) error {
	return d.subscribe(ctx, nil, d.transmit)
}

func (d *Device) subscribe(ctx context.Context, categories []mrsv1.ReportCategory, send sendFunc) error {
	types := make([]mrsv1.ReportCategory, 0, len(categories))
	types = append(types, categories...)

	msg := &mrsv1.DeviceSubscriptionConfiguration{
		MessageHeader:     d.header(),
		SubscriptionTypes: types,
	}
	if errs := mrsv1.ValidateDeviceSubscriptionConfiguration(msg); len(errs) > 0 {
		return newValidationError("subscription", errs)
	}
	return send(ctx, IntentSubscriptionRequest, msg, func(ctx context.Context) error {
		return d.deps.transport.SendSubscriptionRequest(ctx, d.id, msg)
	})
}

// SendCommand validates and sends a command, addressed to sensor when it is
// not nil and to the device itself otherwise.
func (d *Device) SendCommand(ctx context.Context, cmd mrsv1.Command, sensor *mrsv1.SensorIdentification) error {
	msg := &mrsv1.CommandMessage{
		MessageHeader:        d.header(),
		SensorIdentification: sensor,
		Command:              cmd,
	}
	if errs := mrsv1.ValidateCommandMessage(msg); len(errs) > 0 {
		return newValidationError("command", errs)
	}
	return d.send(ctx, IntentCommand, msg, func(ctx context.Context) error {
		return d.deps.transport.SendCommand(ctx, d.id, msg)
	})
}
