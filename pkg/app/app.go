package app

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/cli/globalflag"
	"k8s.io/klog/v2"

	"github.com/autopeer-io/sensorlink/pkg/log"
)

// App is the main structure of a cli application.
type App struct {
	name        string
	shortDesc   string
	description string
	run         RunFunc
	cmd         *cobra.Command
	args        cobra.PositionalArgs

	// +optional
	options CliOptions

	// +optional
	onConfigChange func(fsnotify.Event)
}

type logOptions interface {
	LogOptions() *log.Options
}

// Option defines optional parameters for initializing the application
// structure.
type Option func(*App)

// RunFunc defines the application's startup callback function.
type RunFunc func() error

// WithOptions to open the application's function to read from the
// command line or read parameters from the configuration file.
func WithOptions(opts CliOptions) Option {
	return func(app *App) {
		app.options = opts
	}
}

// WithRunFunc is used to set the application startup callback function option.
func WithRunFunc(run RunFunc) Option {
	return func(app *App) {
		app.run = run
	}
}

// WithDescription is used to set the description of the application.
func WithDescription(desc string) Option {
	return func(app *App) {
		app.description = desc
	}
}

// WithValidArgs set the validation function to valid non-flag arguments.
func WithValidArgs(args cobra.PositionalArgs) Option {
	return func(app *App) {
		app.args = args
	}
}

// WithDefaultValidArgs set default validation function to valid non-flag arguments.
func WithDefaultValidArgs() Option {
	return func(app *App) {
		app.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}

			return nil
		}
	}
}

// WithConfigChangeFunc watches the config file and calls fn after viper
// has re-read it. The changed file is unmarshaled into the options first.
func WithConfigChangeFunc(fn func(fsnotify.Event)) Option {
	return func(app *App) {
		app.onConfigChange = fn
	}
}

// NewApp creates a new application instance based on the given application name,
// short description, and other options.
func NewApp(name string, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()

	return a
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run is used to launch the application.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:   a.name,
		Short: a.shortDesc,
		Long:  a.description,
		// stop printing usage when the command errors
		SilenceUsage: true,
		Args:         a.args,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var namedFlagSets cliflag.NamedFlagSets
	if a.options != nil {
		namedFlagSets = a.options.Flags()
	}
	AddConfigFlag(namedFlagSets.FlagSet("global"), a.name)
	globalflag.AddGlobalFlags(namedFlagSets.FlagSet("global"), cmd.Name())

	fs := cmd.Flags()
	for _, f := range namedFlagSets.FlagSets {
		fs.AddFlagSet(f)
	}
	cliflag.SetUsageAndHelpFunc(cmd, namedFlagSets, 80)

	if a.run != nil {
		cmd.RunE = a.runCommand
	}

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := readConfig(a.name); err != nil {
		return err
	}

	if a.options != nil {
		if err := a.applyOptions(); err != nil {
			return err
		}
	}

	if a.onConfigChange != nil && viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			if a.options != nil {
				if err := viper.Unmarshal(a.options); err != nil {
					log.Error(err, "Failed to reload configuration", "file", e.Name)
					return
				}
				if err := a.options.Validate(); err != nil {
					log.Error(err, "Reloaded configuration is invalid, keeping previous values", "file", e.Name)
					return
				}
				if lo, ok := a.options.(logOptions); ok {
					if err := log.SetLevel(lo.LogOptions().Level); err != nil {
						log.Error(err, "Failed to apply log level")
					}
				}
			}
			log.Info("Configuration file changed", "file", e.Name, "op", e.Op.String())
			a.onConfigChange(e)
		})
		viper.WatchConfig()
	}

	return a.run()
}

func (a *App) applyOptions() error {
	if err := viper.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to unmarshal options: %w", err)
	}

	if opts, ok := a.options.(NamedFlagSetOptions); ok {
		if err := opts.Complete(); err != nil {
			return err
		}
	}

	if err := a.options.Validate(); err != nil {
		return err
	}

	if lo, ok := a.options.(logOptions); ok {
		log.Init(lo.LogOptions())
		// Library logging (apiserver, component-base) goes through klog.
		klog.SetLogger(log.Logr())
	}

	return nil
}
