package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/bastionlabs/vulnsync/cmd/vulnsync/application"
	"github.com/bastionlabs/vulnsync/cmd/vulnsync/cli/options"
	"github.com/bastionlabs/vulnsync/internal/bus"
	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/feed"
	"github.com/bastionlabs/vulnsync/pkg/feed/nvd"
	"github.com/bastionlabs/vulnsync/pkg/store/sqlite"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

var _ options.Interface = &ingestConfig{}

type ingestConfig struct {
	options.Store  `yaml:"store" json:"store" mapstructure:"store"`
	options.Ingest `yaml:"ingest" json:"ingest" mapstructure:"ingest"`
}

func (o *ingestConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store, &o.Ingest)
}

func (o *ingestConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store, &o.Ingest)
}

func Ingest(app *application.Application) *cobra.Command {
	cfg := ingestConfig{
		Store:  options.DefaultStore(),
		Ingest: options.DefaultIngest(),
	}

	cmd := &cobra.Command{
		Use:     "ingest",
		Short:   "ingest a vulnerability feed document into the database",
		Args:    cobra.NoArgs,
		PreRunE: app.Setup(&cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), async(func() error {
				return runIngest(cfg)
			}))
		},
	}

	commonConfiguration(app, cmd, &cfg)

	return cmd
}

func runIngest(cfg ingestConfig) error {
	if cfg.Ingest.Feed == "" {
		return fmt.Errorf("no feed source configured (set ingest.feed or --feed)")
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

	downloadMonitor := &progress.Manual{}
	feedPath, err := feed.Resolve(cfg.Ingest.Feed, cfg.Ingest.ScratchDir, cfg.Ingest.Digest, downloadMonitor)
	if err != nil {
		return fmt.Errorf("unable to resolve feed source: %w", err)
	}

	f, err := os.Open(feedPath)
	if err != nil {
		return fmt.Errorf("unable to open feed document: %w", err)
	}
	defer f.Close()

	monitor := &progress.Manual{}
	bus.Publish(partybus.Event{
		Type:  event.FeedIngestionStarted,
		Value: monitor,
	})

	parser := nvd.NewParser(cwe.NewDictionaryResolver(), nvd.WithMonitor(monitor))
	return parser.Parse(f, func(record vuln.Record, ranges []vuln.Range) error {
		return s.SyncVulnerability(record, ranges)
	})
}
