package v1

import (
	"fmt"
	"math"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateSensorIdentification checks that id names a known sensor type and
// carries an instance id.
func ValidateSensorIdentification(id SensorIdentification, p *field.Path) field.ErrorList {
	var errs field.ErrorList
	if id.SensorType == "" {
		errs = append(errs, field.Required(p.Child("sensorType"), ""))
	} else if !slices.Contains(SupportedSensorTypes, id.SensorType) {
		errs = append(errs, field.NotSupported(p.Child("sensorType"), id.SensorType, SupportedSensorTypes))
	}
	if id.SensorID == "" {
		errs = append(errs, field.Required(p.Child("sensorID"), ""))
	}
	return errs
}

// ValidateDeviceConfiguration validates a configuration response.
func ValidateDeviceConfiguration(c *DeviceConfiguration) field.ErrorList {
	p := field.NewPath("deviceConfiguration")
	if c == nil {
		return field.ErrorList{field.Required(p, "")}
	}

	var errs field.ErrorList
	seen := sets.New[SensorIdentification]()
	for i, sc := range c.SensorConfigurations {
		ip := p.Child("sensorConfiguration").Index(i)
		errs = append(errs, ValidateSensorIdentification(sc.SensorIdentification, ip.Child("sensorIdentification"))...)
		if seen.Has(sc.SensorIdentification) {
			errs = append(errs, field.Duplicate(ip.Child("sensorIdentification"), sc.SensorIdentification.String()))
		}
		seen.Insert(sc.SensorIdentification)
	}
	return errs
}

// ValidateDeviceStatusReport validates a status fragment.
func ValidateDeviceStatusReport(r *DeviceStatusReport) field.ErrorList {
	p := field.NewPath("deviceStatusReport")
	if r == nil {
		return field.ErrorList{field.Required(p, "")}
	}

	var errs field.ErrorList
	seen := sets.New[SensorIdentification]()
	for i, s := range r.SensorStatusReports {
		ip := p.Child("sensorStatusReport").Index(i)
		errs = append(errs, ValidateSensorIdentification(s.SensorIdentification, ip.Child("sensorIdentification"))...)
		if seen.Has(s.SensorIdentification) {
			errs = append(errs, field.Duplicate(ip.Child("sensorIdentification"), s.SensorIdentification.String()))
		}
		seen.Insert(s.SensorIdentification)

		if s.Temperature != nil && (math.IsNaN(*s.Temperature) || math.IsInf(*s.Temperature, 0)) {
			errs = append(errs, field.Invalid(ip.Child("temperature"), *s.Temperature, "must be a finite number"))
		}
		errs = append(errs, validateStatusItem(s.Item, ip.Child("item"))...)
		errs = append(errs, validateBIT(s.DetailedSensorBIT, ip.Child("detailedSensorBIT"))...)
	}
	return errs
}

func validateStatusItem(item *SensorStatusItem, p *field.Path) field.ErrorList {
	if item == nil {
		return nil
	}

	var errs field.ErrorList
	if kinds := item.Kinds(); len(kinds) > 1 {
		errs = append(errs, field.Forbidden(p, fmt.Sprintf("exactly one member may be set, got %v", kinds)))
	}
	if item.VideoSwitch != nil {
		channels := sets.New[int]()
		for i, ch := range item.VideoSwitch.VideoChannels {
			cp := p.Child("videoSwitchStatus", "videoChannel").Index(i)
			if channels.Has(ch.ChannelID) {
				errs = append(errs, field.Duplicate(cp.Child("channelID"), ch.ChannelID))
			}
			channels.Insert(ch.ChannelID)
			errs = append(errs, validateVideoChannel(ch, cp)...)
		}
	}
	if item.Generic != nil {
		names := sets.New[string]()
		for i, prm := range item.Generic.Parameters {
			pp := p.Child("genericStatus", "parameter").Index(i).Child("name")
			if prm.Name == "" {
				errs = append(errs, field.Required(pp, ""))
			} else if names.Has(prm.Name) {
				errs = append(errs, field.Duplicate(pp, prm.Name))
			}
			names.Insert(prm.Name)
		}
	}
	return errs
}

func validateVideoChannel(ch VideoChannel, p *field.Path) field.ErrorList {
	var errs field.ErrorList
	if ch.SensorType != nil && ch.SensorIdentification != nil {
		errs = append(errs, field.Forbidden(p, "sensorType and sensorIdentification are mutually exclusive"))
	}
	if ch.SensorIdentification != nil {
		errs = append(errs, ValidateSensorIdentification(*ch.SensorIdentification, p.Child("sensorIdentification"))...)
	}
	return errs
}

func validateBIT(bit *DetailedSensorBIT, p *field.Path) field.ErrorList {
	if bit == nil {
		return nil
	}

	var errs field.ErrorList
	names := sets.New[string]()
	for i, t := range bit.Tests {
		tp := p.Child("test").Index(i).Child("name")
		if t.Name == "" {
			errs = append(errs, field.Required(tp, ""))
		} else if names.Has(t.Name) {
			errs = append(errs, field.Duplicate(tp, t.Name))
		}
		names.Insert(t.Name)
	}
	return errs
}

// ValidateDeviceIndicationReport validates an indication report.
func ValidateDeviceIndicationReport(r *DeviceIndicationReport) field.ErrorList {
	p := field.NewPath("deviceIndicationReport")
	if r == nil {
		return field.ErrorList{field.Required(p, "")}
	}

	var errs field.ErrorList
	for i, ind := range r.Indications {
		ip := p.Child("indication").Index(i)
		if ind.Code == "" {
			errs = append(errs, field.Required(ip.Child("code"), ""))
		}
		if ind.SensorIdentification != nil {
			errs = append(errs, ValidateSensorIdentification(*ind.SensorIdentification, ip.Child("sensorIdentification"))...)
		}
	}
	return errs
}

// ValidateDeviceSubscriptionConfiguration validates a subscription request or
// acknowledgement.
func ValidateDeviceSubscriptionConfiguration(s *DeviceSubscriptionConfiguration) field.ErrorList {
	p := field.NewPath("deviceSubscriptionConfiguration")
	if s == nil {
		return field.ErrorList{field.Required(p, "")}
	}

	var errs field.ErrorList
	for i, c := range s.SubscriptionTypes {
		if !slices.Contains(SupportedReportCategories, c) {
			errs = append(errs, field.NotSupported(p.Child("subscriptionType").Index(i), c, SupportedReportCategories))
		}
	}
	return errs
}

// ValidateCommandMessage validates a command message.
func ValidateCommandMessage(m *CommandMessage) field.ErrorList {
	p := field.NewPath("commandMessage")
	if m == nil {
		return field.ErrorList{field.Required(p, "")}
	}

	var errs field.ErrorList
	if m.SensorIdentification != nil {
		errs = append(errs, ValidateSensorIdentification(*m.SensorIdentification, p.Child("sensorIdentification"))...)
	}
	errs = append(errs, ValidateCommand(&m.Command, p.Child("command"))...)
	return errs
}

// ValidateCommand checks that exactly one command member is set and that it
// is well formed.
func ValidateCommand(c *Command, p *field.Path) field.ErrorList {
	kinds := c.Kinds()
	switch len(kinds) {
	case 0:
		return field.ErrorList{field.Required(p, "one command member must be set")}
	case 1:
	default:
		return field.ErrorList{field.Forbidden(p, fmt.Sprintf("exactly one member may be set, got %v", kinds))}
	}

	var errs field.ErrorList
	switch kinds[0] {
	case CommandKindSimple:
		if *c.Simple == "" {
			errs = append(errs, field.Required(p.Child("simpleCommand"), ""))
		}
	case CommandKindLocation:
		errs = append(errs, validateLocationCommand(c.Location, p.Child("locationCommand"))...)
	case CommandKindOptical:
		if c.Optical.SimpleCommand == "" {
			errs = append(errs, field.Required(p.Child("opticalCommand", "simpleCommand"), ""))
		}
	case CommandKindVideoSwitch:
		vp := p.Child("videoSwitchCommand")
		if len(c.VideoSwitch.VideoChannels) == 0 {
			errs = append(errs, field.Required(vp.Child("videoChannel"), ""))
		}
		for i, ch := range c.VideoSwitch.VideoChannels {
			errs = append(errs, validateVideoChannel(ch, vp.Child("videoChannel").Index(i))...)
		}
	case CommandKindScript:
		sp := p.Child("scriptCommand")
		s := c.Script
		switch {
		case s.GoTo == nil && s.GeoGoTo == nil:
			errs = append(errs, field.Required(sp, "one of goToCommand or geoGoToCommand must be set"))
		case s.GoTo != nil && s.GeoGoTo != nil:
			errs = append(errs, field.Forbidden(sp, "goToCommand and geoGoToCommand are mutually exclusive"))
		case s.GoTo != nil:
			errs = append(errs, validateLocationCommand(s.GoTo, sp.Child("goToCommand"))...)
		default:
			errs = append(errs, validateLocationCommand(s.GeoGoTo, sp.Child("geoGoToCommand"))...)
		}
		errs = append(errs, ValidateSensorIdentification(s.PedestalSensorIdentification, sp.Child("pedestalSensorIdentification"))...)
		errs = append(errs, ValidateSensorIdentification(s.OpticalSensorIdentification, sp.Child("opticalSensorIdentification"))...)
	}
	return errs
}

func validateLocationCommand(c *LocationCommand, p *field.Path) field.ErrorList {
	var errs field.ErrorList
	if c.SimpleCommand == "" {
		errs = append(errs, field.Required(p.Child("simpleCommand"), ""))
	}
	for i, pt := range c.Points {
		pp := p.Child("point").Index(i)
		switch {
		case pt.Geodetic == nil && pt.Relative == nil:
			errs = append(errs, field.Required(pp, "one of geodeticLocation or relativeLocation must be set"))
		case pt.Geodetic != nil && pt.Relative != nil:
			errs = append(errs, field.Forbidden(pp, "geodeticLocation and relativeLocation are mutually exclusive"))
		case pt.Geodetic != nil:
			g := pt.Geodetic
			if g.Latitude < -90 || g.Latitude > 90 {
				errs = append(errs, field.Invalid(pp.Child("geodeticLocation", "latitude"), g.Latitude, "must be within [-90, 90]"))
			}
			if g.Longitude < -180 || g.Longitude > 180 {
				errs = append(errs, field.Invalid(pp.Child("geodeticLocation", "longitude"), g.Longitude, "must be within [-180, 180]"))
			}
		case pt.Relative != nil:
			if r := pt.Relative.Range; r != nil && r.Value < 0 {
				errs = append(errs, field.Invalid(pp.Child("relativeLocation", "range"), r.Value, "must not be negative"))
			}
		}
	}
	return errs
}
