package options

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Interface is implemented by every command configuration so that flag wiring and
// config binding stay uniform across the command tree.
type Interface interface {
	AddFlags(flags *pflag.FlagSet)
	BindFlags(flags *pflag.FlagSet, v *viper.Viper) error
}

func AddAllFlags(flags *pflag.FlagSet, opts ...Interface) {
	for _, o := range opts {
		o.AddFlags(flags)
	}
}

func BindAllFlags(flags *pflag.FlagSet, v *viper.Viper, opts ...Interface) error {
	for _, o := range opts {
		if err := o.BindFlags(flags, v); err != nil {
			return err
		}
	}
	return nil
}

// Bind attaches a config key to an already-registered flag. A nil flag means the
// command forgot to register it, which is a programming error worth surfacing.
func Bind(v *viper.Viper, key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("unable to bind config key %q: flag not registered", key)
	}
	return v.BindPFlag(key, flag)
}

// Summarize renders a configuration value the same way it would appear in a config
// file, for help output.
func Summarize(cfg interface{}) string {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(out)
}
