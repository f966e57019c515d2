package options

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bastionlabs/vulnsync/internal"
)

var _ Interface = &Store{}

type Store struct {
	// bound options
	DBPath string `yaml:"db-path" json:"db-path" mapstructure:"db-path"`
}

func DefaultStore() Store {
	return Store{
		DBPath: filepath.Join(xdg.DataHome, internal.ApplicationName, internal.ApplicationName+".db"),
	}
}

func (o *Store) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.DBPath,
		"db", "d", o.DBPath,
		"path to the vulnerability database",
	)
}

func (o *Store) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return Bind(v, "store.db-path", flags.Lookup("db"))
}
