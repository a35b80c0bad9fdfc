package core

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors marking each failure class. The client supervisor is the
// only place that inspects these to decide between retry and stop; everything
// below it just wraps and bubbles up.
var (
	// ErrConnection marks a transport-level failure (dial, read or write).
	ErrConnection = errors.New("connection error")

	// ErrProtocol marks a malformed, oversized or unknown frame.
	ErrProtocol = errors.New("protocol error")

	// ErrInvalidKey marks a sign request for a public key absent from the keyring.
	ErrInvalidKey = errors.New("unknown public key")

	// ErrProvider marks a failure inside a signing provider backend.
	ErrProvider = errors.New("signing provider error")

	// ErrKeyringBuild marks a public-key derivation failure during keyring
	// construction. Fatal to process start: no partial keyring is ever served.
	ErrKeyringBuild = errors.New("keyring build error")

	// ErrCloseConn marks a clean close of the connection by the validator.
	// It is a graceful termination, not a failure.
	ErrCloseConn = errors.New("connection closed by validator")

	// ErrFault marks a runtime panic recovered at the supervisor boundary.
	ErrFault = errors.New("session fault")
)
