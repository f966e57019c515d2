package application

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/anchore/go-logger"
	"github.com/bastionlabs/vulnsync/cmd/vulnsync/cli/options"
)

var ConfigSearchLocations = []string{
	"." + Name + ".yaml",
	Name + ".yaml",
	"." + Name + "/config.yaml",
	"~/." + Name + ".yaml",
	"<XDG_CONFIG_HOME>/" + Name + "/config.yaml",
}

type Config struct {
	ConfigPath string      `yaml:",omitempty" json:"config-path" mapstructure:"config"`
	Log        Logging     `yaml:"log" json:"log" mapstructure:"log"`
	Dev        Development `yaml:"dev" json:"dev" mapstructure:"dev"`
	DryRun     bool        `yaml:"dry-run" json:"dry-run" mapstructure:"dry-run"`

	// DisableLoadFromDisk ignores any config file on disk (used when rendering example
	// configuration).
	DisableLoadFromDisk bool `yaml:"-" json:"-" mapstructure:"-"`
}

type Logging struct {
	Quiet        bool         `yaml:"quiet" json:"quiet" mapstructure:"quiet"`
	Verbosity    int          `yaml:"-" json:"-" mapstructure:"verbosity"`
	Level        logger.Level `yaml:"level" json:"level" mapstructure:"level"`
	FileLocation string       `yaml:"file" json:"file" mapstructure:"file"`
}

type Development struct {
	ProfileCPU bool `yaml:"profile-cpu" json:"profile-cpu" mapstructure:"profile-cpu"`
	ProfileMem bool `yaml:"profile-mem" json:"profile-mem" mapstructure:"profile-mem"`
}

func (cfg *Config) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	if err := options.Bind(v, "config", flags.Lookup("config")); err != nil {
		return err
	}
	if err := options.Bind(v, "dry-run", flags.Lookup("dry-run")); err != nil {
		return err
	}
	if err := options.Bind(v, "log.verbosity", flags.Lookup("verbose")); err != nil {
		return err
	}
	if err := options.Bind(v, "log.quiet", flags.Lookup("quiet")); err != nil {
		return err
	}

	v.SetDefault("log.level", string(logger.InfoLevel))
	v.SetDefault("log.file", "")
	v.SetDefault("dev.profile-cpu", false)
	v.SetDefault("dev.profile-mem", false)

	return nil
}

func (cfg *Config) Load(v *viper.Viper) error {
	if !cfg.DisableLoadFromDisk {
		if err := readConfigFile(v, cfg.ConfigPath); err != nil {
			return err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to parse application config: %w", err)
	}

	switch {
	case cfg.Log.Quiet:
		cfg.Log.Level = logger.DisabledLevel
	case cfg.Log.Verbosity > 0:
		cfg.Log.Level = logger.LevelFromVerbosity(cfg.Log.Verbosity, logger.InfoLevel, logger.DebugLevel, logger.TraceLevel)
	case cfg.Log.Level == "":
		cfg.Log.Level = logger.InfoLevel
	}

	return nil
}

func (cfg Config) String() string {
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(out)
}

func readConfigFile(v *viper.Viper, configPath string) error {
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
		return v.ReadInConfig()
	}

	candidates := []string{
		"." + Name + ".yaml",
		Name + ".yaml",
		path.Join("."+Name, "config.yaml"),
		"~/." + Name + ".yaml",
		path.Join(xdg.ConfigHome, Name, "config.yaml"),
	}

	for _, candidate := range candidates {
		expanded, err := homedir.Expand(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(expanded); errors.Is(err, os.ErrNotExist) {
			continue
		}
		v.SetConfigFile(expanded)
		return v.ReadInConfig()
	}

	// no config file found anywhere, which is fine
	return nil
}
