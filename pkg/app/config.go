package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFlagName = "config"

var cfgFile string

// AddConfigFlag adds the --config flag and wires viper to read the file
// and the environment (prefix derived from basename) before a command runs.
func AddConfigFlag(fs *pflag.FlagSet, basename string) {
	fs.StringVarP(&cfgFile, configFlagName, "c", cfgFile, "Read configuration from specified `FILE`, "+
		"support JSON, TOML, YAML, HCL, or Java properties formats.")

	viper.SetEnvPrefix(envPrefix(basename))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// readConfig loads the config file when one was given or one exists at the
// default locations. A missing default file is not an error.
func readConfig(basename string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, "."+basename))
		}
		viper.AddConfigPath(filepath.Join("/etc", basename))
		viper.SetConfigName(basename)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read configuration file(%s): %w", cfgFile, err)
	}
	return nil
}

func envPrefix(basename string) string {
	return strings.ToUpper(strings.ReplaceAll(basename, "-", "_"))
}
