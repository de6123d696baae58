package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/sensorlink/pkg/log"
)

type testOptions struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
	Name     string        `json:"name" mapstructure:"name"`
	Log      *log.Options  `json:"log" mapstructure:"log"`

	completed bool
}

func (o *testOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	fs := fss.FlagSet("test")
	fs.DurationVar(&o.Interval, "interval", o.Interval, "interval")
	fs.StringVar(&o.Name, "name", o.Name, "name")
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func (o *testOptions) LogOptions() *log.Options { return o.Log }

func TestAppRunsWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\ninterval: 3s\n"), 0o600))

	opts := &testOptions{Interval: time.Second, Log: log.NewOptions()}
	ran := false
	a := NewApp("sensorlink-test", "test app",
		WithOptions(opts),
		WithDefaultValidArgs(),
		WithRunFunc(func() error {
			ran = true
			return nil
		}),
	)

	cmd := a.Command()
	cmd.SetArgs([]string{"--config", path, "--interval", "5s"})
	require.NoError(t, cmd.Execute())

	assert.True(t, ran)
	assert.True(t, opts.completed)
	assert.Equal(t, "from-file", opts.Name)
	// flags set on the command line win over the file
	assert.Equal(t, 5*time.Second, opts.Interval)
}

func TestDefaultValidArgs(t *testing.T) {
	a := NewApp("sensorlink-args", "test app", WithDefaultValidArgs(), WithRunFunc(func() error { return nil }))
	cmd := a.Command()
	assert.Error(t, cmd.Args(cmd, []string{"extra"}))
	assert.NoError(t, cmd.Args(cmd, nil))
}
