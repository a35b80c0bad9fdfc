package core

import (
	"context"
	"encoding/hex"

	"github.com/cockroachdb/errors"
)

const (
	// PubKeySize is the size of an ed25519 public key in bytes.
	PubKeySize = 32

	// SignatureSize is the size of an ed25519 signature in bytes.
	SignatureSize = 64
)

// PubKey is a raw ed25519 public key, usable as a map key.
type PubKey [PubKeySize]byte

func PubKeyFromBytes(bz []byte) (PubKey, error) {
	var pk PubKey
	if len(bz) != PubKeySize {
		return pk, errors.Newf("public key must be %d bytes, got %d", PubKeySize, len(bz))
	}
	copy(pk[:], bz)
	return pk, nil
}

func (pk PubKey) Bytes() []byte {
	return pk[:]
}

func (pk PubKey) String() string {
	return hex.EncodeToString(pk[:])
}

// Signer is the capability exposed by a provider backend for one private key.
// Implementations must produce 64-byte ed25519-compatible signatures over
// arbitrary-length input; they are not required to be reentrant, the keyring
// serializes concurrent use of a single key.
type Signer interface {
	// GetPublicKey returns the raw 32-byte public key for this signer.
	GetPublicKey(ctx context.Context) ([]byte, error)

	// Sign signs msg and returns the raw 64-byte signature.
	Sign(ctx context.Context, msg []byte) ([]byte, error)
}

// SignerEntry couples a signer capability with the provider name and key id
// it was configured under, for logging and operator-facing listings.
type SignerEntry struct {
	Provider string
	KeyID    string
	Signer   Signer
}
