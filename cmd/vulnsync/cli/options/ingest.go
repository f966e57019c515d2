package options

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bastionlabs/vulnsync/internal"
)

var _ Interface = &Ingest{}

type Ingest struct {
	// bound options
	Feed string `yaml:"feed" json:"feed" mapstructure:"feed"`

	// unbound options
	Digest     string `yaml:"digest" json:"digest" mapstructure:"digest"`
	ScratchDir string `yaml:"scratch-dir" json:"scratch-dir" mapstructure:"scratch-dir"`
}

func DefaultIngest() Ingest {
	return Ingest{
		ScratchDir: filepath.Join(xdg.CacheHome, internal.ApplicationName, "feeds"),
	}
}

func (o *Ingest) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.Feed,
		"feed", "f", o.Feed,
		"URL or local path of the feed document to ingest (optionally gzip-compressed)",
	)
}

func (o *Ingest) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	// set default values for bound struct items
	if err := Bind(v, "ingest.feed", flags.Lookup("feed")); err != nil {
		return err
	}

	// set default values for non-bound struct items
	v.SetDefault("ingest.digest", o.Digest)
	v.SetDefault("ingest.scratch-dir", o.ScratchDir)

	return nil
}
