package device

import (
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

// Sensor is one sensor of a device as listed by its latest configuration.
type Sensor struct {
	Configuration mrsv1.SensorConfiguration `json:"configuration"`

	// Status is the latest status report that carried an item for this sensor.
	// +optional
	Status *mrsv1.SensorStatusReport `json:"status,omitempty"`

	// BIT is the latest built-in-test result reported for this sensor.
	// +optional
	BIT *mrsv1.DetailedSensorBIT `json:"bit,omitempty"`
}

// Identification returns the sensor's identity.
func (s *Sensor) Identification() mrsv1.SensorIdentification {
	return s.Configuration.SensorIdentification
}

func newSensors(configs []mrsv1.SensorConfiguration) []*Sensor {
	sensors := make([]*Sensor, 0, len(configs))
	for _, c := range configs {
		sensors = append(sensors, &Sensor{Configuration: c})
	}
	return sensors
}

// updateSensorStatus records the latest per-sensor fragments. A sensor's
// status is replaced only when the fragment carries an item for it; its BIT
// whenever the fragment carries one.
func updateSensorStatus(sensors []*Sensor, reports []mrsv1.SensorStatusReport) {
	for _, s := range sensors {
		for i := range reports {
			r := &reports[i]
			if r.SensorIdentification != s.Identification() {
				continue
			}
			if r.Item != nil {
				status := *r
				s.Status = &status
			}
			if r.DetailedSensorBIT != nil {
				s.BIT = r.DetailedSensorBIT
			}
			break
		}
	}
}

func findSensor(sensors []*Sensor, match func(mrsv1.SensorIdentification) bool) *Sensor {
	for _, s := range sensors {
		if match(s.Identification()) {
			return s
		}
	}
	return nil
}

func findByType(sensors []*Sensor, t mrsv1.SensorType) *Sensor {
	return findSensor(sensors, func(id mrsv1.SensorIdentification) bool { return id.SensorType == t })
}

func findByID(sensors []*Sensor, id mrsv1.SensorIdentification) *Sensor {
	return findSensor(sensors, func(other mrsv1.SensorIdentification) bool { return other == id })
}

// activeSensorFrom resolves the sensor routed to the first video channel of
// a video-switch indication in r. It returns nil when r has no indication or
// the channel's source matches no configured sensor.
func activeSensorFrom(sensors []*Sensor, r *mrsv1.DeviceStatusReport) *Sensor {
	ch := mrsv1.FirstVideoChannel(r)
	if ch == nil {
		return nil
	}
	switch {
	case ch.SensorType != nil:
		return findByType(sensors, *ch.SensorType)
	case ch.SensorIdentification != nil:
		return findByID(sensors, *ch.SensorIdentification)
	}
	return nil
}

func copySensors(sensors []*Sensor) []Sensor {
	out := make([]Sensor, 0, len(sensors))
	for _, s := range sensors {
		out = append(out, *s)
	}
	return out
}
