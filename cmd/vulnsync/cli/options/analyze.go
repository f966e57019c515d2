package options

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var _ Interface = &Analyze{}

type Analyze struct {
	// bound options
	Components string `yaml:"components" json:"components" mapstructure:"components"`
}

func DefaultAnalyze() Analyze {
	return Analyze{}
}

func (o *Analyze) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.Components,
		"components", "", o.Components,
		"path to a JSON file describing the components to analyze",
	)
}

func (o *Analyze) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return Bind(v, "analyze.components", flags.Lookup("components"))
}
