package app

import (
	"fmt"

	"github.com/spf13/cobra"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
)

func newDevicesCommand(opts *rootOptions) *cobra.Command {
	var peer string

	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"device", "dev"},
		Short:   "Manage supervised devices",
	}
	cmd.PersistentFlags().StringVar(&peer, "peer", "", "Peer of the device when several devices share an endpoint.")

	list := &cobra.Command{
		Use:   "list",
		Short: "List supervised devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			devices, err := c.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			format, _ := opts.output()
			if format != "table" {
				return printObject(cmd.OutOrStdout(), format, devices)
			}
			printDevices(cmd.OutOrStdout(), devices.Items)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get ENDPOINT",
		Short: "Show a device and its sensors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			d, err := c.GetDevice(cmd.Context(), args[0], peer)
			if err != nil {
				return err
			}
			format, _ := opts.output()
			if format != "table" {
				return printObject(cmd.OutOrStdout(), format, d)
			}
			printDevices(cmd.OutOrStdout(), []apiv1.Device{*d})
			if len(d.Sensors) > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				printSensors(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status ENDPOINT",
		Short: "Print the cumulative status of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			s, err := c.GetStatus(cmd.Context(), args[0], peer)
			if err != nil {
				return err
			}
			format, _ := opts.output()
			if format == "table" {
				format = "yaml"
			}
			return printObject(cmd.OutOrStdout(), format, s)
		},
	}

	var subscriptions []string
	connect := &cobra.Command{
		Use:   "connect ENDPOINT",
		Short: "Start supervising a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &apiv1.ConnectRequest{Endpoint: args[0], Peer: peer}
			for _, s := range subscriptions {
				category, err := mrsv1.ParseReportCategory(s)
				if err != nil {
					return err
				}
				req.Subscriptions = append(req.Subscriptions, category)
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			d, err := c.Connect(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device %s connecting (%s)\n", displayName(d.Endpoint, d.Peer), d.State)
			return nil
		},
	}
	connect.Flags().StringSliceVar(&subscriptions, "subscriptions", nil, "Report categories to subscribe to instead of the manager's defaults.")

	disconnect := &cobra.Command{
		Use:   "disconnect ENDPOINT",
		Short: "Stop supervising a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.Disconnect(cmd.Context(), args[0], peer); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device %s disconnected\n", displayName(args[0], peer))
			return nil
		},
	}

	cmd.AddCommand(list, get, status, connect, disconnect)
	return cmd
}

func displayName(endpoint, peer string) string {
	if peer == "" {
		return endpoint
	}
	return endpoint + "@" + peer
}
