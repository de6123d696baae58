package simulator

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/units"
)

// fullCircleMils is one revolution of a pedestal.
const fullCircleMils = 6400

// Plant is the simulated hardware behind a device: a set of sensors with
// their power, pointing and optical state.
type Plant struct {
	mu      sync.Mutex
	name    string
	sensors []*sensorState
	ticks   int
}

type sensorState struct {
	config mrsv1.SensorConfiguration
	power  mrsv1.PowerState

	// pedestal, in mils and mils per second
	azimuth, elevation float64
	hVel, vVel         float64

	// cameras
	zoom, focus float64

	// video switch
	channels []mrsv1.VideoChannel
}

func (s *sensorState) id() mrsv1.SensorIdentification {
	return s.config.SensorIdentification
}

func (s *sensorState) moving() bool {
	return s.hVel != 0 || s.vVel != 0
}

// ParseSensors parses "TYPE/ID" entries.
func ParseSensors(entries []string) ([]mrsv1.SensorIdentification, error) {
	out := make([]mrsv1.SensorIdentification, 0, len(entries))
	for _, e := range entries {
		typ, id, ok := strings.Cut(strings.TrimSpace(e), "/")
		if !ok || id == "" {
			return nil, fmt.Errorf("sensor %q must be TYPE/ID", e)
		}
		st := mrsv1.SensorType(typ)
		if !slices.Contains(mrsv1.SupportedSensorTypes, st) {
			return nil, fmt.Errorf("sensor %q has an unknown type", e)
		}
		out = append(out, mrsv1.SensorIdentification{SensorType: st, SensorID: id})
	}
	return out, nil
}

// commandsFor lists the simple commands a sensor type accepts.
func commandsFor(t mrsv1.SensorType) []mrsv1.SimpleCommand {
	switch {
	case t == mrsv1.SensorTypePedestal:
		return []mrsv1.SimpleCommand{mrsv1.SimpleCommandOn, mrsv1.SimpleCommandOff, mrsv1.SimpleCommandStop,
			mrsv1.SimpleCommandMove, mrsv1.SimpleCommandGoTo, mrsv1.SimpleCommandGEOGoTo}
	case t.IsCamera():
		return []mrsv1.SimpleCommand{mrsv1.SimpleCommandOn, mrsv1.SimpleCommandOff, mrsv1.SimpleCommandStop,
			mrsv1.SimpleCommandZoom, mrsv1.SimpleCommandFocus}
	case t == mrsv1.SensorTypeVideoSwitch:
		return []mrsv1.SimpleCommand{mrsv1.SimpleCommandSet}
	default:
		return []mrsv1.SimpleCommand{mrsv1.SimpleCommandOn, mrsv1.SimpleCommandOff, mrsv1.SimpleCommandStop}
	}
}

// NewPlant builds a plant with the given sensors, all powered on. A video
// switch starts with channel 1 routed to the first camera.
func NewPlant(name string, ids []mrsv1.SensorIdentification) *Plant {
	p := &Plant{name: name}

	var firstCamera *mrsv1.SensorIdentification
	for _, id := range ids {
		if firstCamera == nil && id.SensorType.IsCamera() {
			firstCamera = &id
		}
		p.sensors = append(p.sensors, &sensorState{
			config: mrsv1.SensorConfiguration{
				SensorIdentification: id,
				SimpleCommands:       commandsFor(id.SensorType),
				Description:          fmt.Sprintf("simulated %s", id.SensorType),
			},
			power: mrsv1.PowerStateOn,
			zoom:  1,
		})
	}
	if firstCamera != nil {
		for _, s := range p.sensors {
			if s.id().SensorType == mrsv1.SensorTypeVideoSwitch {
				src := *firstCamera
				s.channels = []mrsv1.VideoChannel{{ChannelID: 1, SensorIdentification: &src}}
			}
		}
	}
	return p
}

// Name returns the device name reported in every message.
func (p *Plant) Name() string {
	return p.name
}

// Configuration returns the full configuration of the plant.
func (p *Plant) Configuration() *mrsv1.DeviceConfiguration {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg := &mrsv1.DeviceConfiguration{}
	for _, s := range p.sensors {
		c := s.config
		c.SimpleCommands = slices.Clone(c.SimpleCommands)
		cfg.SensorConfigurations = append(cfg.SensorConfigurations, c)
	}
	return cfg
}

// Step advances moving pedestals by elapsed.
func (p *Plant) Step(elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ticks++
	sec := elapsed.Seconds()
	for _, s := range p.sensors {
		if !s.moving() || s.power != mrsv1.PowerStateOn {
			continue
		}
		s.azimuth = math.Mod(s.azimuth+s.hVel*sec+fullCircleMils, fullCircleMils)
		s.elevation = math.Max(-1600, math.Min(1600, s.elevation+s.vVel*sec))
	}
}

// Apply executes a command. It returns the sensors whose status changed.
// A command for a sensor the plant does not have fails.
func (p *Plant) Apply(msg *mrsv1.CommandMessage) ([]mrsv1.SensorIdentification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	targets := p.sensors
	if msg.SensorIdentification != nil {
		s := p.find(*msg.SensorIdentification)
		if s == nil {
			return nil, fmt.Errorf("unknown sensor %s", msg.SensorIdentification)
		}
		targets = []*sensorState{s}
	}

	cmd := msg.Command
	switch cmd.Kind() {
	case mrsv1.CommandKindSimple:
		return p.applySimple(*cmd.Simple, targets), nil
	case mrsv1.CommandKindLocation:
		return p.applyLocation(cmd.Location, targets), nil
	case mrsv1.CommandKindOptical:
		return p.applyOptical(cmd.Optical, targets), nil
	case mrsv1.CommandKindVideoSwitch:
		return p.applyVideoSwitch(cmd.VideoSwitch, targets), nil
	case mrsv1.CommandKindScript:
		return p.applyScript(cmd.Script)
	}
	return nil, fmt.Errorf("empty command")
}

func (p *Plant) applySimple(verb mrsv1.SimpleCommand, targets []*sensorState) []mrsv1.SensorIdentification {
	var changed []mrsv1.SensorIdentification
	for _, s := range targets {
		switch verb {
		case mrsv1.SimpleCommandOn:
			s.power = mrsv1.PowerStateOn
		case mrsv1.SimpleCommandOff:
			s.power = mrsv1.PowerStateOff
			s.hVel, s.vVel = 0, 0
		case mrsv1.SimpleCommandStop:
			s.hVel, s.vVel = 0, 0
		default:
			continue
		}
		changed = append(changed, s.id())
	}
	return changed
}

func (p *Plant) applyLocation(cmd *mrsv1.LocationCommand, targets []*sensorState) []mrsv1.SensorIdentification {
	var changed []mrsv1.SensorIdentification
	for _, s := range targets {
		if s.id().SensorType != mrsv1.SensorTypePedestal {
			continue
		}
		switch cmd.SimpleCommand {
		case mrsv1.SimpleCommandStop:
			s.hVel, s.vVel = 0, 0
		case mrsv1.SimpleCommandMove:
			s.hVel = speedInMils(cmd.HorizontalVelocity)
			s.vVel = speedInMils(cmd.VerticalVelocity)
		default:
			continue
		}
		changed = append(changed, s.id())
	}
	return changed
}

func (p *Plant) applyOptical(cmd *mrsv1.OpticalCommand, targets []*sensorState) []mrsv1.SensorIdentification {
	step := 1.0
	if cmd.Value != nil {
		step = math.Abs(*cmd.Value)
	}
	if cmd.Operation != nil && *cmd.Operation == mrsv1.OperationMinus {
		step = -step
	}

	var changed []mrsv1.SensorIdentification
	for _, s := range targets {
		if !s.id().SensorType.IsCamera() {
			continue
		}
		switch cmd.SimpleCommand {
		case mrsv1.SimpleCommandZoom:
			s.zoom = math.Max(1, s.zoom+step)
		case mrsv1.SimpleCommandFocus:
			s.focus += step
		case mrsv1.SimpleCommandStop:
		default:
			continue
		}
		changed = append(changed, s.id())
	}
	return changed
}

// applyVideoSwitch replaces the routed source of every channel in cmd.
func (p *Plant) applyVideoSwitch(cmd *mrsv1.VideoSwitchCommand, targets []*sensorState) []mrsv1.SensorIdentification {
	var changed []mrsv1.SensorIdentification
	for _, s := range targets {
		if s.id().SensorType != mrsv1.SensorTypeVideoSwitch {
			continue
		}
		for _, ch := range cmd.VideoChannels {
			i := slices.IndexFunc(s.channels, func(c mrsv1.VideoChannel) bool { return c.ChannelID == ch.ChannelID })
			if i < 0 {
				s.channels = append(s.channels, ch)
				continue
			}
			s.channels[i] = ch
		}
		slices.SortFunc(s.channels, func(a, b mrsv1.VideoChannel) int { return a.ChannelID - b.ChannelID })
		changed = append(changed, s.id())
	}
	return changed
}

// applyScript points the pedestal. Geodetic targets are accepted but leave
// the pointing unchanged; the plant has no position of its own.
func (p *Plant) applyScript(cmd *mrsv1.ScriptCommand) ([]mrsv1.SensorIdentification, error) {
	pedestal := p.find(cmd.PedestalSensorIdentification)
	if pedestal == nil {
		return nil, fmt.Errorf("unknown pedestal %s", cmd.PedestalSensorIdentification)
	}
	if p.find(cmd.OpticalSensorIdentification) == nil {
		return nil, fmt.Errorf("unknown sensor %s", cmd.OpticalSensorIdentification)
	}

	pedestal.hVel, pedestal.vVel = 0, 0
	if cmd.GoTo != nil && len(cmd.GoTo.Points) > 0 && cmd.GoTo.Points[0].Relative != nil {
		rel := cmd.GoTo.Points[0].Relative
		pedestal.azimuth = angleInMils(rel.Azimuth)
		pedestal.elevation = angleInMils(rel.Elevation)
	}
	return []mrsv1.SensorIdentification{pedestal.id()}, nil
}

// Status returns a status fragment for the given sensors, or for every
// sensor when none is given.
func (p *Plant) Status(ids ...mrsv1.SensorIdentification) *mrsv1.DeviceStatusReport {
	p.mu.Lock()
	defer p.mu.Unlock()

	ok := mrsv1.TechnicalStateOK
	report := &mrsv1.DeviceStatusReport{TechnicalState: &ok}
	for _, s := range p.sensors {
		if len(ids) > 0 && !slices.Contains(ids, s.id()) {
			continue
		}
		report.SensorStatusReports = append(report.SensorStatusReports, p.sensorStatus(s))
	}
	return report
}

func (p *Plant) sensorStatus(s *sensorState) mrsv1.SensorStatusReport {
	state := mrsv1.TechnicalStateOK
	if s.power == mrsv1.PowerStateOff {
		state = mrsv1.TechnicalStateOff
	}
	power := s.power
	temperature := 35 + float64(p.ticks%5)*0.5

	r := mrsv1.SensorStatusReport{
		SensorIdentification: s.id(),
		TechnicalState:       &state,
		PowerState:           &power,
		Temperature:          &temperature,
	}

	switch t := s.id().SensorType; {
	case t == mrsv1.SensorTypePedestal:
		az, el, moving := units.Round(s.azimuth, 2), units.Round(s.elevation, 2), s.moving()
		r.Item = &mrsv1.SensorStatusItem{Pedestal: &mrsv1.PedestalStatus{Azimuth: &az, Elevation: &el, Moving: &moving}}
	case t.IsCamera():
		zoom, focus := s.zoom, s.focus
		fov := units.Round(units.DegreesToMils(40/zoom), 2)
		r.Item = &mrsv1.SensorStatusItem{Optical: &mrsv1.OpticalStatus{Zoom: &zoom, Focus: &focus, FieldOfView: &fov}}
	case t == mrsv1.SensorTypeVideoSwitch:
		r.Item = &mrsv1.SensorStatusItem{VideoSwitch: &mrsv1.VideoSwitchStatus{VideoChannels: slices.Clone(s.channels)}}
	}
	return r
}

func (p *Plant) find(id mrsv1.SensorIdentification) *sensorState {
	for _, s := range p.sensors {
		if s.id() == id {
			return s
		}
	}
	return nil
}

func speedInMils(s *mrsv1.AngularSpeed) float64 {
	if s == nil {
		return 0
	}
	if s.Units == mrsv1.AngularSpeedUnitsDegreesPerSecond {
		return units.DegreesToMils(s.Value)
	}
	return s.Value
}

func angleInMils(a mrsv1.Angle) float64 {
	if a.Units == mrsv1.AngularUnitsDegrees {
		return units.DegreesToMils(a.Value)
	}
	return a.Value
}
