package options

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/internal/retry"
	"github.com/bastionlabs/vulnsync/pkg/cache"
)

var _ Interface = &OssIndex{}
var _ log.Redactable = &OssIndex{}

type OssIndex struct {
	// bound options
	BaseURL   string `yaml:"base-url" json:"base-url" mapstructure:"base-url"`
	BatchSize int    `yaml:"batch-size" json:"batch-size" mapstructure:"batch-size"`
	AliasSync bool   `yaml:"alias-sync" json:"alias-sync" mapstructure:"alias-sync"`

	// unbound options
	Username string `yaml:"username" json:"username" mapstructure:"username"`
	Token    string `yaml:"token" json:"token" mapstructure:"token"`

	// EncryptedToken carries the API token sealed with AES-256-GCM; DecryptionKey is the
	// base64-encoded 32-byte key. These are only consulted when Token is empty.
	EncryptedToken string `yaml:"encrypted-token" json:"encrypted-token" mapstructure:"encrypted-token"`
	DecryptionKey  string `yaml:"decryption-key" json:"decryption-key" mapstructure:"decryption-key"`

	CacheValidity time.Duration `yaml:"cache-validity" json:"cache-validity" mapstructure:"cache-validity"`
	Retry         retry.Policy  `yaml:"retry" json:"retry" mapstructure:"retry"`
}

func DefaultOssIndex() OssIndex {
	return OssIndex{
		BaseURL:       "https://ossindex.sonatype.org",
		BatchSize:     100,
		AliasSync:     true,
		CacheValidity: cache.DefaultValidity,
		Retry:         retry.DefaultPolicy(),
	}
}

func (o *OssIndex) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.BaseURL,
		"oss-index-url", "", o.BaseURL,
		"base URL of the OSS Index service",
	)

	flags.IntVarP(
		&o.BatchSize,
		"batch-size", "", o.BatchSize,
		"number of coordinates submitted per component-report request",
	)

	flags.BoolVarP(
		&o.AliasSync,
		"alias-sync", "", o.AliasSync,
		"record CVE aliases reported for OSS Index vulnerabilities",
	)
}

func (o *OssIndex) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	// set default values for bound struct items
	if err := Bind(v, "oss-index.base-url", flags.Lookup("oss-index-url")); err != nil {
		return err
	}
	if err := Bind(v, "oss-index.batch-size", flags.Lookup("batch-size")); err != nil {
		return err
	}
	if err := Bind(v, "oss-index.alias-sync", flags.Lookup("alias-sync")); err != nil {
		return err
	}

	// set default values for non-bound struct items
	v.SetDefault("oss-index.username", o.Username)
	v.SetDefault("oss-index.token", o.Token)
	v.SetDefault("oss-index.encrypted-token", o.EncryptedToken)
	v.SetDefault("oss-index.decryption-key", o.DecryptionKey)
	v.SetDefault("oss-index.cache-validity", o.CacheValidity)
	v.SetDefault("oss-index.retry.initial-delay", o.Retry.InitialDelay)
	v.SetDefault("oss-index.retry.max-delay", o.Retry.MaxDelay)
	v.SetDefault("oss-index.retry.multiplier", o.Retry.Multiplier)
	v.SetDefault("oss-index.retry.max-attempts", o.Retry.MaxAttempts)

	return nil
}

func (o OssIndex) Redact() {
	for _, value := range []string{o.Token, o.EncryptedToken, o.DecryptionKey} {
		if value != "" {
			log.Redact(value)
		}
	}
}
