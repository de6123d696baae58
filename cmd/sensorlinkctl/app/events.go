package app

import (
	"fmt"

	"github.com/spf13/cobra"

	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
)

func newEventsCommand(opts *rootOptions) *cobra.Command {
	var peer string

	cmd := &cobra.Command{
		Use:   "events ENDPOINT",
		Short: "Follow the events of a device until it is disconnected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			format, _ := opts.output()
			out := cmd.OutOrStdout()

			return c.WatchEvents(cmd.Context(), args[0], peer, func(ev apiv1.Event) error {
				if format != "table" {
					return printObject(out, format, ev)
				}
				_, err := fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", ev.Seq, ev.Time.Local().Format("15:04:05.000"), ev.Type, displayName(ev.Device.Endpoint, ev.Device.Peer))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&peer, "peer", "", "Peer of the device when several devices share an endpoint.")

	return cmd
}
