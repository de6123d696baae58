package device

import (
	"context"
	"fmt"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
	"github.com/autopeer-io/sensorlink/pkg/units"
)

// commandTarget resolves the sensor a command is addressed to.
type commandTarget struct {
	pedestal *Sensor
	sensor   *Sensor
}

// resolve looks up the target sensor. An explicit sensor must be configured;
// otherwise the active sensor is used when orActive is set. needPedestal
// additionally requires a pedestal.
func (d *Device) resolve(sensor *mrsv1.SensorIdentification, orActive, needPedestal bool) (commandTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var t commandTarget
	if needPedestal {
		t.pedestal = findByType(d.sensors, mrsv1.SensorTypePedestal)
		if t.pedestal == nil {
			return t, ErrNoPedestal
		}
	}

	switch {
	case sensor != nil:
		t.sensor = findByID(d.sensors, *sensor)
		if t.sensor == nil {
			return t, fmt.Errorf("%w: %s", ErrSensorNotFound, sensor)
		}
	case orActive:
		t.sensor = d.active
	}
	return t, nil
}

func sensorID(s *Sensor) *mrsv1.SensorIdentification {
	if s == nil {
		return nil
	}
	id := s.Identification()
	return &id
}

func simple(cmd mrsv1.SimpleCommand) mrsv1.Command {
	return mrsv1.Command{Simple: &cmd}
}

// Stop stops the device, or the given sensor. A camera gets an optical stop,
// a pedestal a location stop, anything else a simple stop.
func (d *Device) Stop(ctx context.Context, sensor *mrsv1.SensorIdentification) error {
	if sensor == nil {
		return d.SendCommand(ctx, simple(mrsv1.SimpleCommandStop), nil)
	}

	t, err := d.resolve(sensor, false, false)
	if err != nil {
		return err
	}
	if !t.sensor.Configuration.Supports(mrsv1.SimpleCommandStop) {
		return fmt.Errorf("%w: %s does not accept %s", ErrUnsupportedCommand, sensor, mrsv1.SimpleCommandStop)
	}

	var cmd mrsv1.Command
	switch st := sensor.SensorType; {
	case st.IsCamera():
		cmd.Optical = &mrsv1.OpticalCommand{SimpleCommand: mrsv1.SimpleCommandStop}
	case st == mrsv1.SensorTypePedestal:
		cmd.Location = &mrsv1.LocationCommand{SimpleCommand: mrsv1.SimpleCommandStop}
	default:
		cmd = simple(mrsv1.SimpleCommandStop)
	}
	return d.SendCommand(ctx, cmd, sensor)
}

// TurnOn powers on the device, or the given sensor.
func (d *Device) TurnOn(ctx context.Context, sensor *mrsv1.SensorIdentification) error {
	return d.sendSimple(ctx, mrsv1.SimpleCommandOn, sensor)
}

// TurnOff powers off the device, or the given sensor.
func (d *Device) TurnOff(ctx context.Context, sensor *mrsv1.SensorIdentification) error {
	return d.sendSimple(ctx, mrsv1.SimpleCommandOff, sensor)
}

func (d *Device) sendSimple(ctx context.Context, verb mrsv1.SimpleCommand, sensor *mrsv1.SensorIdentification) error {
	t, err := d.resolve(sensor, false, false)
	if err != nil {
		return err
	}
	return d.SendCommand(ctx, simple(verb), sensorID(t.sensor))
}

// Zoom zooms the given sensor, or the active sensor, in for a positive value
// and out otherwise.
func (d *Device) Zoom(ctx context.Context, value float64, sensor *mrsv1.SensorIdentification) error {
	return d.sendOptical(ctx, mrsv1.SimpleCommandZoom, value, sensor)
}

// Focus adjusts the focus of the given sensor, or the active sensor.
func (d *Device) Focus(ctx context.Context, value float64, sensor *mrsv1.SensorIdentification) error {
	return d.sendOptical(ctx, mrsv1.SimpleCommandFocus, value, sensor)
}

func (d *Device) sendOptical(ctx context.Context, verb mrsv1.SimpleCommand, value float64, sensor *mrsv1.SensorIdentification) error {
	t, err := d.resolve(sensor, true, false)
	if err != nil {
		return err
	}
	if t.sensor == nil {
		return ErrNoTargetSensor
	}

	op := mrsv1.OperationMinus
	if value > 0 {
		op = mrsv1.OperationPlus
	}
	control := mrsv1.ControlManual
	cmd := mrsv1.Command{Optical: &mrsv1.OpticalCommand{
		SimpleCommand: verb,
		Value:         &value,
		Operation:     &op,
		Control:       &control,
	}}
	return d.SendCommand(ctx, cmd, sensorID(t.sensor))
}

// Move slews the pedestal at the given velocities in mils per second.
func (d *Device) Move(ctx context.Context, horizontal, vertical float64) error {
	t, err := d.resolve(nil, false, true)
	if err != nil {
		return err
	}

	cmd := mrsv1.Command{Location: &mrsv1.LocationCommand{
		SimpleCommand:      mrsv1.SimpleCommandMove,
		HorizontalVelocity: &mrsv1.AngularSpeed{Value: horizontal, Units: mrsv1.AngularSpeedUnitsMilsPerSecond},
		VerticalVelocity:   &mrsv1.AngularSpeed{Value: vertical, Units: mrsv1.AngularSpeedUnitsMilsPerSecond},
	}}
	return d.SendCommand(ctx, cmd, sensorID(t.pedestal))
}

// Goto points the given sensor, or the active sensor, at a relative
// location. Azimuth and elevation are in degrees; a positive range in
// meters is included.
func (d *Device) Goto(ctx context.Context, azimuth, elevation, rng float64, sensor *mrsv1.SensorIdentification) error {
	t, err := d.resolve(sensor, true, true)
	if err != nil {
		return err
	}
	if t.sensor == nil {
		return ErrNoTargetSensor
	}

	loc := &mrsv1.RelativeLocation{
		Azimuth:   mrsv1.Angle{Value: units.Round(units.DegreesToMils(azimuth), 2), Units: mrsv1.AngularUnitsMils},
		Elevation: mrsv1.Angle{Value: units.Round(units.DegreesToMils(elevation), 2), Units: mrsv1.AngularUnitsMils},
	}
	if rng > 0 {
		loc.Range = &mrsv1.Distance{Value: rng, Units: mrsv1.DistanceUnitsMeters}
	}

	cmd := mrsv1.Command{Script: &mrsv1.ScriptCommand{
		GoTo: &mrsv1.LocationCommand{
			SimpleCommand: mrsv1.SimpleCommandGoTo,
			Points:        []mrsv1.Point{{Relative: loc}},
		},
		PedestalSensorIdentification: t.pedestal.Identification(),
		OpticalSensorIdentification:  t.sensor.Identification(),
	}}
	return d.SendCommand(ctx, cmd, nil)
}

// GeoGoto points the given sensor, or the active sensor, at a WGS84
// location. Latitude and longitude are decimal degrees, altitude meters.
func (d *Device) GeoGoto(ctx context.Context, latitude, longitude, altitude float64, ref mrsv1.AltitudeReference, sensor *mrsv1.SensorIdentification) error {
	t, err := d.resolve(sensor, true, true)
	if err != nil {
		return err
	}
	if t.sensor == nil {
		return ErrNoTargetSensor
	}
	if ref == "" {
		ref = mrsv1.AltitudeReferenceMSL
	}

	cmd := mrsv1.Command{Script: &mrsv1.ScriptCommand{
		GeoGoTo: &mrsv1.LocationCommand{
			SimpleCommand: mrsv1.SimpleCommandGEOGoTo,
			Points: []mrsv1.Point{{Geodetic: &mrsv1.GeodeticLocation{
				Latitude:  latitude,
				Longitude: longitude,
				Altitude: mrsv1.Altitude{
					Value:     altitude,
					Units:     mrsv1.DistanceUnitsMeters,
					Reference: ref,
				},
				Datum: "WGS84",
			}}},
		},
		PedestalSensorIdentification: t.pedestal.Identification(),
		OpticalSensorIdentification:  t.sensor.Identification(),
	}}
	return d.SendCommand(ctx, cmd, nil)
}

// SwitchChannels reroutes video channels on the device, or on the given
// video switch.
func (d *Device) SwitchChannels(ctx context.Context, channels []mrsv1.VideoChannel, sensor *mrsv1.SensorIdentification) error {
	t, err := d.resolve(sensor, false, false)
	if err != nil {
		return err
	}

	cmd := mrsv1.Command{VideoSwitch: &mrsv1.VideoSwitchCommand{
		SimpleCommand: mrsv1.SimpleCommandSet,
		VideoChannels: channels,
	}}
	return d.SendCommand(ctx, cmd, sensorID(t.sensor))
}

// Execute dispatches an API command request.
func (d *Device) Execute(ctx context.Context, req *apiv1.CommandRequest) error {
	switch req.Verb {
	case apiv1.CommandVerbKeepAlive:
		return d.SendKeepAlive(ctx)
	case apiv1.CommandVerbStop:
		return d.Stop(ctx, req.Sensor)
	case apiv1.CommandVerbTurnOn:
		return d.TurnOn(ctx, req.Sensor)
	case apiv1.CommandVerbTurnOff:
		return d.TurnOff(ctx, req.Sensor)
	case apiv1.CommandVerbZoom:
		return d.Zoom(ctx, req.Value, req.Sensor)
	case apiv1.CommandVerbFocus:
		return d.Focus(ctx, req.Value, req.Sensor)
	case apiv1.CommandVerbMove:
		return d.Move(ctx, req.HorizontalVelocity, req.VerticalVelocity)
	case apiv1.CommandVerbGoto:
		return d.Goto(ctx, req.Azimuth, req.Elevation, req.Range, req.Sensor)
	case apiv1.CommandVerbGeoGoto:
		return d.GeoGoto(ctx, req.Latitude, req.Longitude, req.Altitude, req.AltitudeReference, req.Sensor)
	case apiv1.CommandVerbSwitchChannels:
		return d.SwitchChannels(ctx, req.VideoChannels, req.Sensor)
	case apiv1.CommandVerbCustom:
		if req.Command == nil {
			return newValidationError("command", requiredCommand())
		}
		t, err := d.resolve(req.Sensor, false, false)
		if err != nil {
			return err
		}
		return d.SendCommand(ctx, *req.Command, sensorID(t.sensor))
	}
	return newValidationError("command", unsupportedVerb(req.Verb))
}
