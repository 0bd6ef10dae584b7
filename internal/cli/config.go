package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes the environment variables that set options, as in
// PAPERSEARCH_DB.
const envPrefix = "PAPERSEARCH"

// Config is the file form of the global options:
//
//	db: ./conference.db
//	conf: ./settings
//	user: chair@example.org
//	format: json
//	qt: ti
type Config struct {
	Verbose bool   `mapstructure:"verbose"`
	Format  string `mapstructure:"format"`
	DB      string `mapstructure:"db"`
	Conf    string `mapstructure:"conf"`
	User    string `mapstructure:"user"`
	QT      string `mapstructure:"qt"`
}

// boundFlags are the persistent flags that may also be configured.
var boundFlags = []string{"verbose", "format", "db", "conf", "user"}

// load merges the config file, the environment and the flags of root
// into o. An explicit --config must exist; the default file is optional.
func (o *RootOptions) load(root *cobra.Command) error {
	v := o.v
	if v == nil {
		v = viper.New()
		o.v = v
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("format", "text")
	v.SetDefault("qt", "n")
	for _, name := range boundFlags {
		if err := v.BindPFlag(name, root.PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if o.Config != "" {
		v.SetConfigFile(o.Config)
	} else {
		v.SetConfigName("papersearch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.Config != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("cannot read the config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error reading the config file: %w", err)
	}
	o.Verbose = cfg.Verbose
	o.Format = cfg.Format
	o.DB = cfg.DB
	o.Conf = cfg.Conf
	o.User = cfg.User
	o.QT = cfg.QT
	return nil
}
