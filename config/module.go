package config

import (
	"github.com/cockroachdb/errors"

	"github.com/validatorlabs/kms/core"
)

// ProviderModule is implemented by signing-provider packages. Modules are
// registered from main and own the decoding of their config section.
type ProviderModule interface {
	// Name is the provider's section name under "providers" in the config file.
	Name() string

	// BuildSigners constructs one signer entry per configured key.
	BuildSigners(keys []RawKeyConfig) ([]core.SignerEntry, error)
}

// Context carries the registered provider modules and the loaded config
// through the command tree.
type Context struct {
	Modules    []ProviderModule
	Config     *Config
	ConfigPath string
}

func (ctx *Context) Module(name string) ProviderModule {
	for _, m := range ctx.Modules {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// BuildSigners collects signer entries from every provider section in the
// config. Iteration follows module registration order so that keyring
// construction is deterministic. A section without a registered module is a
// configuration error.
func (ctx *Context) BuildSigners() ([]core.SignerEntry, error) {
	for name := range ctx.Config.Providers {
		if ctx.Module(name) == nil {
			return nil, errors.Newf("unknown provider %q in config", name)
		}
	}

	var entries []core.SignerEntry
	for _, m := range ctx.Modules {
		keys, ok := ctx.Config.Providers[m.Name()]
		if !ok || len(keys) == 0 {
			continue
		}
		es, err := m.BuildSigners(keys)
		if err != nil {
			return nil, errors.Wrapf(err, "provider %q", m.Name())
		}
		entries = append(entries, es...)
	}
	return entries, nil
}
