package core

import (
	"github.com/cockroachdb/errors"
)

// ValidatorConfig is the shape of one supervised connection target as it
// appears in the config file.
type ValidatorConfig struct {
	Label string `mapstructure:"label" json:"label" yaml:"label"`
	Addr  string `mapstructure:"addr" json:"addr" yaml:"addr"`
	Port  uint16 `mapstructure:"port" json:"port" yaml:"port"`

	// Reconnect is a tri-state: unset means retry forever (the default),
	// an explicit false stops supervision after the first terminal failure.
	Reconnect *bool `mapstructure:"reconnect" json:"reconnect,omitempty" yaml:"reconnect,omitempty"`
}

func (c ValidatorConfig) Validate() error {
	if c.Label == "" {
		return errors.New("validator label is empty")
	}
	if c.Addr == "" {
		return errors.Newf("validator %s: addr is empty", c.Label)
	}
	if c.Port == 0 {
		return errors.Newf("validator %s: port is zero", c.Label)
	}
	return nil
}

// ShouldReconnect reports whether the client respawns sessions after a
// non-graceful termination.
func (c ValidatorConfig) ShouldReconnect() bool {
	return c.Reconnect == nil || *c.Reconnect
}
