package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"sigs.k8s.io/yaml"

	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
)

func printObject(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func printDevices(w io.Writer, devices []apiv1.Device) {
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ENDPOINT", "PEER", "STATE", "NAME", "ACTIVE SENSOR", "SENSORS", "LAST CONTACT")
	for _, d := range devices {
		name, active := "-", "-"
		if d.DeviceIdentification != nil {
			name = d.DeviceIdentification.DeviceName
		}
		if d.ActiveSensor != nil {
			active = d.ActiveSensor.String()
		}
		peer := d.Peer
		if peer == "" {
			peer = "-"
		}
		table.AddRow(d.Endpoint, peer, d.State, name, active, len(d.Sensors), formatTime(d.LastContactTime))
	}
	fmt.Fprintln(w, table)
}

func printSensors(w io.Writer, d *apiv1.Device) {
	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("SENSOR", "DESCRIPTION", "COMMANDS", "POWER", "TEMPERATURE")
	for _, s := range d.Sensors {
		commands := make([]string, 0, len(s.Configuration.SimpleCommands))
		for _, c := range s.Configuration.SimpleCommands {
			commands = append(commands, string(c))
		}
		power, temperature := "-", "-"
		if s.Status != nil && s.Status.PowerState != nil {
			power = string(*s.Status.PowerState)
		}
		if s.Status != nil && s.Status.Temperature != nil {
			temperature = fmt.Sprintf("%.1f", *s.Status.Temperature)
		}
		desc := s.Configuration.Description
		if desc == "" {
			desc = "-"
		}
		table.AddRow(s.Configuration.SensorIdentification.String(), desc, strings.Join(commands, ","), power, temperature)
	}
	fmt.Fprintln(w, table)
}
