package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/autopeer-io/sensorlink/pkg/client"
)

const (
	commandName = "sensorlinkctl"

	flagServer  = "server"
	flagTimeout = "timeout"
	flagOutput  = "output"
)

// rootOptions are shared by every subcommand. Flags can be set from the
// environment as SENSORLINK_SERVER, SENSORLINK_TIMEOUT and SENSORLINK_OUTPUT.
type rootOptions struct {
	v *viper.Viper
}

func (o *rootOptions) client() (*client.Client, error) {
	return client.New(o.v.GetString(flagServer), o.v.GetDuration(flagTimeout))
}

func (o *rootOptions) output() (string, error) {
	out := strings.ToLower(o.v.GetString(flagOutput))
	switch out {
	case "table", "json", "yaml":
		return out, nil
	default:
		return "", fmt.Errorf("--output must be one of table, json or yaml, got %q", out)
	}
}

// NewCommand returns the sensorlinkctl root command.
func NewCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:          commandName,
		Short:        "Inspect and control devices supervised by a sensorlink manager",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := opts.output()
			return err
		},
	}

	fs := cmd.PersistentFlags()
	fs.String(flagServer, "http://localhost:8080", "Address of the sensorlink manager.")
	fs.Duration(flagTimeout, client.DefaultTimeout, "Timeout of each request.")
	fs.StringP(flagOutput, "o", "table", "Output format: table, json or yaml.")

	opts.v.SetEnvPrefix("SENSORLINK")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()
	_ = opts.v.BindPFlags(fs)

	cmd.AddCommand(
		newDevicesCommand(opts),
		newCommandCommand(opts),
		newEventsCommand(opts),
	)
	return cmd
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
