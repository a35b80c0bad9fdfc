package softsign

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/validatorlabs/kms/config"
	"github.com/validatorlabs/kms/core"
)

const ProviderName = "softsign"

// KeyConfig is one key entry under the "softsign" provider section.
type KeyConfig struct {
	KeyID string `mapstructure:"key_id"`
	Path  string `mapstructure:"path"`
}

func (c KeyConfig) Validate() error {
	if c.KeyID == "" {
		return errors.New("key_id is empty")
	}
	if c.Path == "" {
		return errors.Newf("key %s: path is empty", c.KeyID)
	}
	return nil
}

type Module struct{}

var _ config.ProviderModule = Module{}

func (Module) Name() string {
	return ProviderName
}

func (Module) BuildSigners(keys []config.RawKeyConfig) ([]core.SignerEntry, error) {
	entries := make([]core.SignerEntry, 0, len(keys))
	for _, raw := range keys {
		var kc KeyConfig
		if err := mapstructure.Decode(raw, &kc); err != nil {
			return nil, errors.Wrap(err, "failed to decode softsign key config")
		}
		if err := kc.Validate(); err != nil {
			return nil, err
		}
		signer, err := NewSignerFromSeedFile(kc.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "key %s", kc.KeyID)
		}
		entries = append(entries, core.SignerEntry{
			Provider: ProviderName,
			KeyID:    kc.KeyID,
			Signer:   signer,
		})
	}
	return entries, nil
}
