package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bastionlabs/vulnsync/cmd/vulnsync/application"
	"github.com/bastionlabs/vulnsync/cmd/vulnsync/cli/options"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/store/sqlite"
)

var _ options.Interface = &statusConfig{}

type statusConfig struct {
	options.Store `yaml:"store" json:"store" mapstructure:"store"`
}

func (o *statusConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store)
}

func (o *statusConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store)
}

func Status(app *application.Application) *cobra.Command {
	cfg := statusConfig{
		Store: options.DefaultStore(),
	}

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "show a summary of the vulnerability database contents",
		Args:    cobra.NoArgs,
		PreRunE: app.Setup(&cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), async(func() error {
				return runStatus(cfg)
			}))
		},
	}

	commonConfiguration(app, cmd, &cfg)

	return cmd
}

func runStatus(cfg statusConfig) error {
	if _, err := os.Stat(cfg.Store.DBPath); err != nil {
		return fmt.Errorf("no database found at %q", cfg.Store.DBPath)
	}

	s, cleanup, err := sqlite.NewStore(cfg.Store.DBPath, false)
	if err != nil {
		return fmt.Errorf("unable to open store: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Errorf("unable to close store: %v", err)
		}
	}()

	stats, err := s.Stats()
	if err != nil {
		return fmt.Errorf("unable to read store statistics: %w", err)
	}

	fmt.Printf("  • %s\n", cfg.Store.DBPath)
	fmt.Printf("    ├── vulnerabilities: %s\n", humanize.Comma(stats.Vulnerabilities))
	fmt.Printf("    ├── ranges:          %s\n", humanize.Comma(stats.Ranges))
	fmt.Printf("    ├── components:      %s\n", humanize.Comma(stats.Components))
	fmt.Printf("    ├── associations:    %s\n", humanize.Comma(stats.Associations))
	fmt.Printf("    ├── aliases:         %s\n", humanize.Comma(stats.Aliases))
	fmt.Printf("    ├── cache entries:   %s\n", humanize.Comma(stats.CacheEntries))
	fmt.Printf("    └── status:          %s\n", color.HiGreen.Sprint("valid"))

	return nil
}
