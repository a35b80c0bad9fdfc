package core

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/validatorlabs/kms/log"
)

// Keyring maps public keys to signer capabilities. It is built once, before
// any client is spawned, and never mutated afterwards; every session shares
// the same instance concurrently. The immutability is what makes it safe to
// keep using after a fault recovered at the client boundary.
type Keyring struct {
	keys map[PubKey]*keyringEntry
}

type keyringEntry struct {
	entry SignerEntry

	// serializes signing on one key; provider backends are not assumed
	// to be reentrant
	mu sync.Mutex
}

// KeyInfo describes one keyring entry for listings and logs.
type KeyInfo struct {
	Provider string
	KeyID    string
	PubKey   PubKey
}

// NewKeyring derives the public key of every signer up front and indexes the
// signers by it. Any single derivation failure aborts the whole construction:
// the process must not start serving with a partial keyring. When two signers
// derive the same public key, the last one wins; this is logged because it
// usually means a misconfiguration.
func NewKeyring(ctx context.Context, entries []SignerEntry) (*Keyring, error) {
	logger := log.GetLogger().WithModule("core.keyring")

	keys := make(map[PubKey]*keyringEntry, len(entries))
	for _, e := range entries {
		raw, err := e.Signer.GetPublicKey(ctx)
		if err != nil {
			return nil, errors.Mark(
				errors.Wrapf(err, "failed to derive public key for %s:%s", e.Provider, e.KeyID),
				ErrKeyringBuild,
			)
		}
		pk, err := PubKeyFromBytes(raw)
		if err != nil {
			return nil, errors.Mark(
				errors.Wrapf(err, "invalid public key from %s:%s", e.Provider, e.KeyID),
				ErrKeyringBuild,
			)
		}
		if prev, ok := keys[pk]; ok {
			logger.Warn("duplicate public key, previous signer is replaced",
				"provider", prev.entry.Provider,
				"key_id", prev.entry.KeyID,
				"pubkey", pk.String(),
			)
		}
		keys[pk] = &keyringEntry{entry: e}
		logger.WithSigner(e.Provider, e.KeyID).Info("added signing key", "pubkey", pk.String())
	}

	return &Keyring{keys: keys}, nil
}

// Sign looks up pk and delegates to the matching signer. Concurrent calls for
// distinct keys proceed in parallel; calls for the same key are serialized.
func (kr *Keyring) Sign(ctx context.Context, pk PubKey, msg []byte) ([]byte, error) {
	ke, ok := kr.keys[pk]
	if !ok {
		return nil, errors.Mark(
			errors.Newf("no signer for public key %s", pk),
			ErrInvalidKey,
		)
	}

	ke.mu.Lock()
	defer ke.mu.Unlock()

	sig, err := ke.entry.Signer.Sign(ctx, msg)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "signer %s:%s failed", ke.entry.Provider, ke.entry.KeyID),
			ErrProvider,
		)
	}
	if len(sig) != SignatureSize {
		return nil, errors.Mark(
			errors.Newf("signer %s:%s returned a %d-byte signature, want %d",
				ke.entry.Provider, ke.entry.KeyID, len(sig), SignatureSize),
			ErrProvider,
		)
	}
	return sig, nil
}

func (kr *Keyring) Len() int {
	return len(kr.keys)
}

// List returns the keyring entries sorted by public key.
func (kr *Keyring) List() []KeyInfo {
	infos := make([]KeyInfo, 0, len(kr.keys))
	for pk, ke := range kr.keys {
		infos = append(infos, KeyInfo{
			Provider: ke.entry.Provider,
			KeyID:    ke.entry.KeyID,
			PubKey:   pk,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].PubKey.String() < infos[j].PubKey.String()
	})
	return infos
}
