package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validatorlabs/kms/config"
	"github.com/validatorlabs/kms/core"
)

const testConfigYAML = `global:
  log-level: debug
  log-format: json
  log-output: stdout
  respawn-delay: 2s
  max-msg-len: 4096
  prometheus-addr: localhost:9999
providers:
  softsign:
    - key_id: main
      path: /tmp/test.key
validators:
  - label: validator-a
    addr: 10.0.0.1
    port: 26658
  - label: validator-b
    addr: 10.0.0.2
    port: 26659
    reconnect: false
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Global.LogLevel)
	assert.Equal(t, "json", cfg.Global.LogFormat)
	assert.Equal(t, uint32(4096), cfg.Global.MaxMsgLen)

	d, err := cfg.Global.RespawnDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	require.Len(t, cfg.Validators, 2)

	// reconnect is a tri-state: absent means retry forever
	a := cfg.Validators[0]
	assert.Nil(t, a.Reconnect)
	assert.True(t, a.ShouldReconnect())

	b := cfg.Validators[1]
	require.NotNil(t, b.Reconnect)
	assert.False(t, *b.Reconnect)
	assert.False(t, b.ShouldReconnect())

	require.Len(t, cfg.Providers["softsign"], 1)
	assert.Equal(t, "main", cfg.Providers["softsign"][0]["key_id"])
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"bad respawn-delay": "global:\n  respawn-delay: soon\n",
		"missing label":     "validators:\n  - addr: 10.0.0.1\n    port: 26658\n",
		"zero port":         "validators:\n  - label: v\n    addr: 10.0.0.1\n    port: 0\n",
	}
	for n, contents := range cases {
		t.Run(n, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, contents))
			require.Error(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())

	d, err := cfg.Global.RespawnDuration()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultRespawnDelay, d)

	out, err := config.MarshalYAML(cfg)
	require.NoError(t, err)

	loaded, err := config.LoadConfig(writeConfig(t, string(out)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Global, loaded.Global)
}

type fakeModule struct {
	name    string
	entries []core.SignerEntry
	gotKeys []config.RawKeyConfig
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) BuildSigners(keys []config.RawKeyConfig) ([]core.SignerEntry, error) {
	m.gotKeys = keys
	return m.entries, nil
}

type staticSigner struct{ pk []byte }

func (s staticSigner) GetPublicKey(ctx context.Context) ([]byte, error) { return s.pk, nil }
func (s staticSigner) Sign(ctx context.Context, msg []byte) ([]byte, error) {
	return make([]byte, core.SignatureSize), nil
}

func TestContextBuildSigners(t *testing.T) {
	mod := &fakeModule{
		name: "fake",
		entries: []core.SignerEntry{
			{Provider: "fake", KeyID: "k", Signer: staticSigner{pk: make([]byte, core.PubKeySize)}},
		},
	}
	ctx := &config.Context{
		Modules: []config.ProviderModule{mod},
		Config: &config.Config{
			Providers: map[string][]config.RawKeyConfig{
				"fake": {{"key_id": "k"}},
			},
		},
	}

	entries, err := ctx.BuildSigners()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, mod.gotKeys, 1)
}

func TestContextBuildSignersUnknownProvider(t *testing.T) {
	ctx := &config.Context{
		Config: &config.Config{
			Providers: map[string][]config.RawKeyConfig{
				"yubikey": {{"key_id": "k"}},
			},
		},
	}
	_, err := ctx.BuildSigners()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
