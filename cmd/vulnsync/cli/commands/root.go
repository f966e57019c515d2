package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bastionlabs/vulnsync/cmd/vulnsync/application"
	"github.com/bastionlabs/vulnsync/cmd/vulnsync/cli/options"
	"github.com/bastionlabs/vulnsync/internal/utils"
)

var _ options.Interface = &rootConfig{}

type rootConfig struct {
	options.Store    `yaml:"store" json:"store" mapstructure:"store"`
	options.Ingest   `yaml:"ingest" json:"ingest" mapstructure:"ingest"`
	options.Analyze  `yaml:"analyze" json:"analyze" mapstructure:"analyze"`
	options.OssIndex `yaml:"oss-index" json:"oss-index" mapstructure:"oss-index"`
}

func (o *rootConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store, &o.Ingest, &o.Analyze, &o.OssIndex)
}

func (o *rootConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store, &o.Ingest, &o.Analyze, &o.OssIndex)
}

func Root(app *application.Application) *cobra.Command {
	cfg := rootConfig{
		Store:    options.DefaultStore(),
		Ingest:   options.DefaultIngest(),
		Analyze:  options.DefaultAnalyze(),
		OssIndex: options.DefaultOssIndex(),
	}
	appCfg := app.Config

	cmd := &cobra.Command{
		Use:     "",
		Short:   "ingest the vulnerability feed and analyze components against intelligence services",
		Version: application.ReadBuildInfo().Version,
		PreRunE: app.Setup(&cfg),
		Example: formatRootExamples(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), async(func() error {
				if cfg.Ingest.Feed != "" {
					if err := runIngest(ingestConfig{
						Store:  cfg.Store,
						Ingest: cfg.Ingest,
					}); err != nil {
						return err
					}
				}

				if cfg.Analyze.Components != "" {
					return runAnalyze(analyzeConfig{
						Store:    cfg.Store,
						Analyze:  cfg.Analyze,
						OssIndex: cfg.OssIndex,
					})
				}

				return nil
			}))
		},
	}

	commonConfiguration(nil, cmd, &cfg)

	cmd.SetVersionTemplate(fmt.Sprintf("%s {{.Version}}\n", application.Name))

	flags := cmd.PersistentFlags()

	flags.StringVarP(&appCfg.ConfigPath, "config", "c", "", "path to the application config")
	flags.BoolVarP(&appCfg.DryRun, "dry-run", "", false, "parse the application config, CLI flags, and exit.")
	flags.CountVarP(&appCfg.Log.Verbosity, "verbose", "v", "increase verbosity (-v = debug, -vv = trace)")
	flags.BoolVarP(&appCfg.Log.Quiet, "quiet", "q", false, "suppress all logging output")

	return cmd
}

func formatRootExamples() string {
	cfg := application.Config{
		DisableLoadFromDisk: true,
	}
	// best effort to load current or default values
	// intentionally don't read from the environment
	_ = cfg.Load(viper.New())

	cfgString := utils.Indent(options.Summarize(cfg), "  ")
	return fmt.Sprintf(`Application Config:
 (search locations: %+v)
%s`, strings.Join(application.ConfigSearchLocations, ", "), strings.TrimSuffix(cfgString, "\n"))
}
