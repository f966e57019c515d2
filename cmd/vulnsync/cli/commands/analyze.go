package commands

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bastionlabs/vulnsync/cmd/vulnsync/application"
	"github.com/bastionlabs/vulnsync/cmd/vulnsync/cli/options"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/analysis"
	"github.com/bastionlabs/vulnsync/pkg/analysis/ossindex"
	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/cwe"
	"github.com/bastionlabs/vulnsync/pkg/notification"
	"github.com/bastionlabs/vulnsync/pkg/secret"
	"github.com/bastionlabs/vulnsync/pkg/store/sqlite"
)

var _ options.Interface = &analyzeConfig{}

type analyzeConfig struct {
	options.Store    `yaml:"store" json:"store" mapstructure:"store"`
	options.Analyze  `yaml:"analyze" json:"analyze" mapstructure:"analyze"`
	options.OssIndex `yaml:"oss-index" json:"oss-index" mapstructure:"oss-index"`
}

func (o *analyzeConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store, &o.Analyze, &o.OssIndex)
}

func (o *analyzeConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store, &o.Analyze, &o.OssIndex)
}

func Analyze(app *application.Application) *cobra.Command {
	cfg := analyzeConfig{
		Store:    options.DefaultStore(),
		Analyze:  options.DefaultAnalyze(),
		OssIndex: options.DefaultOssIndex(),
	}

	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "analyze components against vulnerability intelligence services",
		Args:    cobra.NoArgs,
		PreRunE: app.Setup(&cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), async(func() error {
				return runAnalyze(cfg)
			}))
		},
	}

	commonConfiguration(app, cmd, &cfg)

	return cmd
}

// componentInput is the on-disk shape of a component handed to the analyze command.
type componentInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	Version  string `json:"version"`
	Purl     string `json:"purl"`
	Cpe      string `json:"cpe"`
	Internal bool   `json:"internal"`
}

func runAnalyze(cfg analyzeConfig) error {
	if cfg.Analyze.Components == "" {
		return fmt.Errorf("no components configured (set analyze.components or --components)")
	}

	components, err := readComponents(cfg.Analyze.Components)
	if err != nil {
		return err
	}
	if len(components) == 0 {
		log.Warn("no components to analyze")
		return nil
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

	for _, c := range components {
		if err := s.AddComponent(c); err != nil {
			return fmt.Errorf("unable to persist component %q: %w", c.Name, err)
		}
	}

	username, token := resolveCredentials(cfg.OssIndex)

	analyzer := ossindex.NewAnalyzer(ossindex.Config{
		BaseURL:          cfg.OssIndex.BaseURL,
		UserAgent:        application.Name + "/" + application.ReadBuildInfo().Version,
		Username:         username,
		Token:            token,
		BatchSize:        cfg.OssIndex.BatchSize,
		AliasSyncEnabled: cfg.OssIndex.AliasSync,
		CacheValidity:    cfg.OssIndex.CacheValidity,
		Retry:            cfg.OssIndex.Retry,
	}, s, cwe.NewDictionaryResolver(), notification.NewBusEvaluator(s))

	coordinator := analysis.NewCoordinator(analyzer)

	return coordinator.Process(analysis.Request{
		Components: components,
		Level:      analysis.LevelPeriodic,
	})
}

func readComponents(path string) ([]component.Component, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read components file: %w", err)
	}

	var inputs []componentInput
	if err := json.Unmarshal(contents, &inputs); err != nil {
		return nil, fmt.Errorf("unable to parse components file: %w", err)
	}

	components := make([]component.Component, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			id = uuid.New()
		}
		components = append(components, component.Component{
			ID:       id,
			Name:     in.Name,
			Group:    in.Group,
			Version:  in.Version,
			Purl:     in.Purl,
			Cpe:      in.Cpe,
			Internal: in.Internal,
		})
	}
	return components, nil
}

// resolveCredentials prefers a plaintext token; a sealed token that cannot be recovered
// downgrades the session to unauthenticated rather than failing the analysis.
func resolveCredentials(cfg options.OssIndex) (string, string) {
	if cfg.Token != "" || cfg.EncryptedToken == "" {
		return cfg.Username, cfg.Token
	}

	token, err := decryptToken(cfg.EncryptedToken, cfg.DecryptionKey)
	if err != nil {
		log.Warnf("unable to recover service credential, continuing unauthenticated: %v", err)
		return "", ""
	}
	return cfg.Username, token
}

func decryptToken(encryptedToken, encodedKey string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return "", fmt.Errorf("credential key is not valid base64: %w", err)
	}

	decryptor, err := secret.NewAesGcmDecryptor(key)
	if err != nil {
		return "", err
	}

	return decryptor.Decrypt(encryptedToken)
}
