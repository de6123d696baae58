package v1

import (
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/autopeer-io/sensorlink/pkg/merge"
)

// MergeDeviceStatusReport folds the fragment new into the cumulative report
// old and returns the result. Neither input is modified; the result shares
// unchanged sub-trees with them. Shape mismatches keep the old subtree and
// are recorded in d.
func MergeDeviceStatusReport(d *merge.Diagnostics, old, new *DeviceStatusReport) *DeviceStatusReport {
	return merge.Record(d, field.NewPath("deviceStatusReport"), old, new, mergeDeviceStatus)
}

func mergeDeviceStatus(d *merge.Diagnostics, p *field.Path, old, new *DeviceStatusReport) *DeviceStatusReport {
	out := *old
	out.MessageHeader = mergeHeader(old.MessageHeader, new.MessageHeader)
	out.TechnicalState = merge.Value(old.TechnicalState, new.TechnicalState)
	out.SensorStatusReports = merge.Collection(d, p.Child("sensorStatusReport"),
		old.SensorStatusReports, new.SensorStatusReports, sensorStatusKey, mergeSensorStatus)
	return &out
}

func mergeHeader(old, new MessageHeader) MessageHeader {
	out := old
	out.MessageID = mergeString(old.MessageID, new.MessageID)
	out.MessageType = mergeString(old.MessageType, new.MessageType)
	out.RequestorIdentification = mergeString(old.RequestorIdentification, new.RequestorIdentification)
	out.DeviceIdentification = merge.Value(old.DeviceIdentification, new.DeviceIdentification)
	return out
}

// mergeString treats the empty string as "not reported".
func mergeString[S ~string](old, new S) S {
	if new == "" {
		return old
	}
	return new
}

func sensorStatusKey(r SensorStatusReport) SensorIdentification {
	return r.SensorIdentification
}

func mergeSensorStatus(d *merge.Diagnostics, p *field.Path, old, new SensorStatusReport) SensorStatusReport {
	out := old
	out.SensorIdentification = new.SensorIdentification
	out.TechnicalState = merge.Value(old.TechnicalState, new.TechnicalState)
	out.PowerState = merge.Value(old.PowerState, new.PowerState)
	out.Temperature = merge.Value(old.Temperature, new.Temperature)
	out.Item = merge.Record(d, p.Child("item"), old.Item, new.Item, mergeStatusItem)
	out.DetailedSensorBIT = merge.Record(d, p.Child("detailedSensorBIT"), old.DetailedSensorBIT, new.DetailedSensorBIT, mergeBIT)
	return out
}

func mergeStatusItem(d *merge.Diagnostics, p *field.Path, old, new *SensorStatusItem) *SensorStatusItem {
	oldKind, newKind := old.Kind(), new.Kind()
	if n := len(new.Kinds()); n > 1 {
		d.Skip(p, "item sets %d members, expected one", n)
		if oldKind == StatusItemKindNone {
			return nil
		}
		return old
	}

	switch {
	case newKind == StatusItemKindNone:
		return old
	case oldKind == StatusItemKindNone:
		// First report of this item: merge into an empty member.
		oldKind = newKind
	case oldKind != newKind:
		d.Skip(p, "item kind %s does not match previously reported %s", newKind, oldKind)
		return old
	}

	out := *old
	switch oldKind {
	case StatusItemKindVideoSwitch:
		out.VideoSwitch = merge.Record(d, p.Child("videoSwitchStatus"), old.VideoSwitch, new.VideoSwitch, mergeVideoSwitch)
	case StatusItemKindPedestal:
		out.Pedestal = merge.Record(d, p.Child("pedestalStatus"), old.Pedestal, new.Pedestal, mergePedestal)
	case StatusItemKindOptical:
		out.Optical = merge.Record(d, p.Child("opticalStatus"), old.Optical, new.Optical, mergeOptical)
	case StatusItemKindGeneric:
		out.Generic = merge.Record(d, p.Child("genericStatus"), old.Generic, new.Generic, mergeGeneric)
	}
	return &out
}

func mergeVideoSwitch(d *merge.Diagnostics, p *field.Path, old, new *VideoSwitchStatus) *VideoSwitchStatus {
	out := *old
	out.VideoChannels = merge.Collection(d, p.Child("videoChannel"), old.VideoChannels, new.VideoChannels,
		func(c VideoChannel) int { return c.ChannelID }, mergeVideoChannel)
	return &out
}

// mergeVideoChannel replaces the routed source as a unit: a channel references
// its source either by type or by identification, never both.
func mergeVideoChannel(_ *merge.Diagnostics, _ *field.Path, old, new VideoChannel) VideoChannel {
	out := old
	out.ChannelID = new.ChannelID
	if new.SensorType == nil && new.SensorIdentification == nil {
		return out
	}
	out.SensorType = new.SensorType
	out.SensorIdentification = new.SensorIdentification
	return out
}

func mergePedestal(_ *merge.Diagnostics, _ *field.Path, old, new *PedestalStatus) *PedestalStatus {
	return &PedestalStatus{
		Azimuth:   merge.Value(old.Azimuth, new.Azimuth),
		Elevation: merge.Value(old.Elevation, new.Elevation),
		Moving:    merge.Value(old.Moving, new.Moving),
	}
}

func mergeOptical(_ *merge.Diagnostics, _ *field.Path, old, new *OpticalStatus) *OpticalStatus {
	return &OpticalStatus{
		Zoom:        merge.Value(old.Zoom, new.Zoom),
		Focus:       merge.Value(old.Focus, new.Focus),
		FieldOfView: merge.Value(old.FieldOfView, new.FieldOfView),
	}
}

func mergeGeneric(d *merge.Diagnostics, p *field.Path, old, new *GenericStatus) *GenericStatus {
	return &GenericStatus{
		Parameters: merge.Collection(d, p.Child("parameter"), old.Parameters, new.Parameters,
			func(prm Parameter) string { return prm.Name },
			func(_ *merge.Diagnostics, _ *field.Path, old, new Parameter) Parameter {
				return Parameter{Name: new.Name, Value: merge.Value(old.Value, new.Value)}
			}),
	}
}

func mergeBIT(d *merge.Diagnostics, p *field.Path, old, new *DetailedSensorBIT) *DetailedSensorBIT {
	return &DetailedSensorBIT{
		Result: merge.Value(old.Result, new.Result),
		Tests: merge.Collection(d, p.Child("test"), old.Tests, new.Tests,
			func(t BITTest) string { return t.Name },
			func(_ *merge.Diagnostics, _ *field.Path, old, new BITTest) BITTest {
				return BITTest{
					Name:    new.Name,
					Result:  merge.Value(old.Result, new.Result),
					Message: merge.Value(old.Message, new.Message),
				}
			}),
	}
}

// PruneSensors returns a copy of r without the reports of sensors for which
// keep returns false. r itself is not modified.
func PruneSensors(r *DeviceStatusReport, keep func(SensorIdentification) bool) *DeviceStatusReport {
	if r == nil {
		return nil
	}
	out := *r
	out.SensorStatusReports = nil
	for _, s := range r.SensorStatusReports {
		if keep(s.SensorIdentification) {
			out.SensorStatusReports = append(out.SensorStatusReports, s)
		}
	}
	return &out
}

// FirstVideoChannel returns the first channel of the first video-switch item
// in r, or nil when r carries no video-switch indication.
func FirstVideoChannel(r *DeviceStatusReport) *VideoChannel {
	if r == nil {
		return nil
	}
	for _, s := range r.SensorStatusReports {
		if s.Item == nil || s.Item.VideoSwitch == nil {
			continue
		}
		if len(s.Item.VideoSwitch.VideoChannels) == 0 {
			return nil
		}
		ch := s.Item.VideoSwitch.VideoChannels[0]
		return &ch
	}
	return nil
}
