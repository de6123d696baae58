package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
)

type commandOptions struct {
	peer   string
	sensor string
	file   string
	req    apiv1.CommandRequest
	altRef string
}

func newCommandCommand(opts *rootOptions) *cobra.Command {
	o := &commandOptions{}

	cmd := &cobra.Command{
		Use:   "command ENDPOINT [VERB]",
		Short: "Send a command to a device",
		Long: `Send a command to a device. VERB is one of KeepAlive, Stop, TurnOn,
TurnOff, Zoom, Focus, Move, Goto, GeoGoto or SwitchChannels. A full command
request, Custom commands included, can be read from a JSON or YAML file
with --file instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := o.request(args[1:])
			if err != nil {
				return err
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.SendCommand(cmd.Context(), args[0], o.peer, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s sent to %s\n", req.Verb, displayName(args[0], o.peer))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.peer, "peer", "", "Peer of the device when several devices share an endpoint.")
	fs.StringVar(&o.sensor, "sensor", "", "Target sensor as TYPE/ID, e.g. FLIR/1. Defaults to the active sensor where applicable.")
	fs.StringVarP(&o.file, "file", "f", "", "Read the command request from a JSON or YAML file.")
	fs.Float64Var(&o.req.Value, "value", 0, "Zoom or focus step; positive zooms or focuses in.")
	fs.Float64Var(&o.req.HorizontalVelocity, "horizontal-velocity", 0, "Move: horizontal velocity in mils per second.")
	fs.Float64Var(&o.req.VerticalVelocity, "vertical-velocity", 0, "Move: vertical velocity in mils per second.")
	fs.Float64Var(&o.req.Azimuth, "azimuth", 0, "Goto: azimuth in degrees.")
	fs.Float64Var(&o.req.Elevation, "elevation", 0, "Goto: elevation in degrees.")
	fs.Float64Var(&o.req.Range, "range", 0, "Goto: range in meters.")
	fs.Float64Var(&o.req.Latitude, "latitude", 0, "GeoGoto: WGS84 latitude.")
	fs.Float64Var(&o.req.Longitude, "longitude", 0, "GeoGoto: WGS84 longitude.")
	fs.Float64Var(&o.req.Altitude, "altitude", 0, "GeoGoto: altitude in meters.")
	fs.StringVar(&o.altRef, "altitude-reference", "", "GeoGoto: MSL, AGL or HAE. Defaults to MSL.")

	return cmd
}

func (o *commandOptions) request(args []string) (*apiv1.CommandRequest, error) {
	if o.file != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("VERB and --file are mutually exclusive")
		}
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, err
		}
		req := &apiv1.CommandRequest{}
		if err := yaml.UnmarshalStrict(data, req); err != nil {
			return nil, fmt.Errorf("invalid command file %s: %w", o.file, err)
		}
		return req, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("VERB is required unless --file is set")
	}

	req := o.req
	req.Verb = apiv1.CommandVerb(args[0])
	if req.Verb == apiv1.CommandVerbCustom {
		return nil, fmt.Errorf("custom commands must be read from --file")
	}
	if o.altRef != "" {
		req.AltitudeReference = mrsv1.AltitudeReference(strings.ToUpper(o.altRef))
	}
	if o.sensor != "" {
		sensor, err := parseSensor(o.sensor)
		if err != nil {
			return nil, err
		}
		req.Sensor = &sensor
	}
	return &req, nil
}

// parseSensor parses TYPE/ID.
func parseSensor(s string) (mrsv1.SensorIdentification, error) {
	typ, id, ok := strings.Cut(s, "/")
	if !ok || typ == "" || id == "" {
		return mrsv1.SensorIdentification{}, fmt.Errorf("--sensor %q must be TYPE/ID", s)
	}
	return mrsv1.SensorIdentification{SensorType: mrsv1.SensorType(typ), SensorID: id}, nil
}
