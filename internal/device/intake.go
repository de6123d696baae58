package device

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/merge"
)

// Message kinds, used in metrics, logs and validation errors.
const (
	KindConfiguration   = "configuration"
	KindStatus          = "status"
	KindIndication      = "indication"
	KindSubscriptionAck = "subscription_ack"
	KindCommandEcho     = "command_echo"
)

// admit records contact and runs validation when the policy asks for it.
// A message that fails validation still proves the device is alive.
// It must be called with mu held.
func (d *Device) admit(kind string, validate func() field.ErrorList) error {
	d.touch()
	metrics.MessagesReceivedTotal.WithLabelValues(kind).Inc()

	if !d.deps.policy().ValidateMessagesOnReceive {
		return nil
	}
	if err := newValidationError(kind, validate()); err != nil {
		metrics.ValidationFailuresTotal.WithLabelValues(kind).Inc()
		d.log.Warn("Rejected invalid message", "kind", kind, "error", err.Error())
		return err
	}
	return nil
}

// HandleConfiguration applies a full configuration: the sensor list is
// replaced, cumulative status of removed sensors is dropped and a
// subscription request for the device's report categories is sent.
func (d *Device) HandleConfiguration(ctx context.Context, msg *mrsv1.DeviceConfiguration) error {
	d.mu.Lock()
	if d.detached {
		d.mu.Unlock()
		return ErrDetached
	}
	if err := d.admit(KindConfiguration, func() field.ErrorList { return mrsv1.ValidateDeviceConfiguration(msg) }); err != nil {
		d.mu.Unlock()
		return err
	}

	d.configuration = msg
	d.sensors = newSensors(msg.SensorConfigurations)

	kept := sets.New[mrsv1.SensorIdentification]()
	for _, s := range d.sensors {
		kept.Insert(s.Identification())
	}
	d.cumulative = mrsv1.PruneSensors(d.cumulative, kept.Has)
	if d.active != nil {
		d.active = findByID(d.sensors, d.active.Identification())
	}

	categories := d.categories
	d.enqueue(EventMessageReceived, msg)
	d.mu.Unlock()

	d.flush()
	d.log.Info("Configuration received", "sensors", len(msg.SensorConfigurations))

	// Send failures are logged by send; the configuration itself was applied.
	_ = d.SendSubscriptionRequest(ctx, categories)
	return nil
}

// HandleStatusReport merges a status fragment into the cumulative snapshot
// and publishes the merged result.
func (d *Device) HandleStatusReport(_ context.Context, msg *mrsv1.DeviceStatusReport) error {
	d.mu.Lock()
	if d.detached {
		d.mu.Unlock()
		return ErrDetached
	}
	if err := d.admit(KindStatus, func() field.ErrorList { return mrsv1.ValidateDeviceStatusReport(msg) }); err != nil {
		d.mu.Unlock()
		return err
	}

	if s := activeSensorFrom(d.sensors, msg); s != nil {
		d.active = s
	}
	updateSensorStatus(d.sensors, msg.SensorStatusReports)

	var diag merge.Diagnostics
	d.cumulative = mrsv1.MergeDeviceStatusReport(&diag, d.cumulative, msg)
	d.lastRaw = msg
	d.enqueue(EventStatusUpdated, d.cumulative)
	d.mu.Unlock()

	if n := diag.Len(); n > 0 {
		metrics.MergeSkipsTotal.Add(float64(n))
		for _, s := range diag.Skips() {
			d.log.Warn("Status merge kept previous value", "path", s.Path, "reason", s.Reason)
		}
	}

	d.flush()
	return nil
}

// HandleIndicationReport records contact and publishes the report.
func (d *Device) HandleIndicationReport(_ context.Context, msg *mrsv1.DeviceIndicationReport) error {
	return d.handleOther(KindIndication, msg, func() field.ErrorList { return mrsv1.ValidateDeviceIndicationReport(msg) })
}

// HandleSubscriptionAck records contact and publishes the acknowledgement.
func (d *Device) HandleSubscriptionAck(_ context.Context, msg *mrsv1.DeviceSubscriptionConfiguration) error {
	return d.handleOther(KindSubscriptionAck, msg, func() field.ErrorList { return mrsv1.ValidateDeviceSubscriptionConfiguration(msg) })
}

// HandleCommandEcho records contact and publishes the echoed command.
func (d *Device) HandleCommandEcho(_ context.Context, msg *mrsv1.CommandMessage) error {
	return d.handleOther(KindCommandEcho, msg, func() field.ErrorList { return mrsv1.ValidateCommandMessage(msg) })
}

func (d *Device) handleOther(kind string, msg any, validate func() field.ErrorList) error {
	d.mu.Lock()
	if d.detached {
		d.mu.Unlock()
		return ErrDetached
	}
	if err := d.admit(kind, validate); err != nil {
		d.mu.Unlock()
		return err
	}
	d.enqueue(EventMessageReceived, msg)
	d.mu.Unlock()

	d.flush()
	return nil
}
