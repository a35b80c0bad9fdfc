package softsign

import (
	"context"
	"crypto/ed25519"
	"os"

	"github.com/cockroachdb/errors"
)

// Signer signs with a software ed25519 key loaded from a raw 32-byte seed
// file. It is the only in-tree provider backend; custody backends (HSM,
// cloud KMS) plug in through the same capability interface.
type Signer struct {
	priv ed25519.PrivateKey
}

func NewSignerFromSeedFile(path string) (*Signer, error) {
	seed, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key file %s", path)
	}
	return NewSignerFromSeed(seed)
}

func NewSignerFromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Newf("key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Signer) GetPublicKey(ctx context.Context) ([]byte, error) {
	return s.priv.Public().(ed25519.PublicKey), nil
}

func (s *Signer) Sign(ctx context.Context, msg []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, msg), nil
}
