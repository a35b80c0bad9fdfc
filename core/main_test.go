package core_test

import (
	"context"
	"crypto/ed25519"
	"io"
	"os"
	"testing"

	"github.com/validatorlabs/kms/core"
	"github.com/validatorlabs/kms/internal/telemetry"
	"github.com/validatorlabs/kms/log"
)

func TestMain(m *testing.M) {
	if err := log.InitLoggerWithWriter("debug", "text", io.Discard, false); err != nil {
		panic(err)
	}
	if err := telemetry.InitializeMetrics(telemetry.ExporterNull{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testSigner is an in-memory ed25519 signer with failure and panic knobs.
type testSigner struct {
	priv ed25519.PrivateKey

	pubKeyErr error
	signErr   error
	signPanic bool
}

func newTestSigner(seed byte) *testSigner {
	seedBytes := make([]byte, ed25519.SeedSize)
	for i := range seedBytes {
		seedBytes[i] = seed
	}
	return &testSigner{priv: ed25519.NewKeyFromSeed(seedBytes)}
}

func (s *testSigner) GetPublicKey(ctx context.Context) ([]byte, error) {
	if s.pubKeyErr != nil {
		return nil, s.pubKeyErr
	}
	return s.priv.Public().(ed25519.PublicKey), nil
}

func (s *testSigner) Sign(ctx context.Context, msg []byte) ([]byte, error) {
	if s.signPanic {
		panic("signer backend invariant violated")
	}
	if s.signErr != nil {
		return nil, s.signErr
	}
	return ed25519.Sign(s.priv, msg), nil
}

func (s *testSigner) mustPubKey(t *testing.T) core.PubKey {
	t.Helper()
	raw, err := s.GetPublicKey(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pk, err := core.PubKeyFromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	return pk
}
