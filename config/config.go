package config

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v2"

	"github.com/validatorlabs/kms/core"
)

// RawKeyConfig is one undecoded key entry under a provider section. Each
// provider module decodes its own entries into its own config type.
type RawKeyConfig map[string]interface{}

type Config struct {
	Global     GlobalConfig              `mapstructure:"global" json:"global" yaml:"global"`
	Providers  map[string][]RawKeyConfig `mapstructure:"providers" json:"providers" yaml:"providers"`
	Validators []core.ValidatorConfig    `mapstructure:"validators" json:"validators" yaml:"validators"`
}

type GlobalConfig struct {
	LogLevel       string `mapstructure:"log-level" json:"log-level" yaml:"log-level"`
	LogFormat      string `mapstructure:"log-format" json:"log-format" yaml:"log-format"`
	LogOutput      string `mapstructure:"log-output" json:"log-output" yaml:"log-output"`
	RespawnDelay   string `mapstructure:"respawn-delay" json:"respawn-delay" yaml:"respawn-delay"`
	MaxMsgLen      uint32 `mapstructure:"max-msg-len" json:"max-msg-len" yaml:"max-msg-len"`
	PrometheusAddr string `mapstructure:"prometheus-addr" json:"prometheus-addr" yaml:"prometheus-addr"`
}

func DefaultConfig() Config {
	return Config{
		Global:     newDefaultGlobalConfig(),
		Providers:  map[string][]RawKeyConfig{},
		Validators: []core.ValidatorConfig{},
	}
}

// newDefaultGlobalConfig returns a global config with defaults set
func newDefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		LogLevel:       "info",
		LogFormat:      "text",
		LogOutput:      "stderr",
		RespawnDelay:   "5s",
		MaxMsgLen:      core.DefaultMaxMsgLen,
		PrometheusAddr: "localhost:2223",
	}
}

func (c GlobalConfig) RespawnDuration() (time.Duration, error) {
	if c.RespawnDelay == "" {
		return core.DefaultRespawnDelay, nil
	}
	d, err := time.ParseDuration(c.RespawnDelay)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid respawn-delay %q", c.RespawnDelay)
	}
	return d, nil
}

func (c Config) Validate() error {
	if _, err := c.Global.RespawnDuration(); err != nil {
		return err
	}
	for _, v := range c.Validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads and validates the config file at path.
func LoadConfig(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	if err := vp.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := DefaultConfig()
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MarshalJSON(c Config) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

func MarshalYAML(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}
