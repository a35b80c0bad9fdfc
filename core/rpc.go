package core

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// Wire format: every frame starts with a one-byte tag followed by a
// tag-specific payload. Tags form a reserved space so that new request kinds
// can be added without breaking existing decoders.
//
//	Request::Sign  (0x00): pubkey[32] || msg_len(u32 BE) || msg[msg_len]
//	Response::Sign (0x00): sig[64]
const (
	TagSign byte = 0x00
)

// DefaultMaxMsgLen bounds the message field of a sign request. Frames
// declaring a larger length are rejected before any allocation.
const DefaultMaxMsgLen uint32 = 1 << 20

// Request is one decoded request frame.
type Request interface {
	Tag() byte
}

// Response is one decoded response frame.
type Response interface {
	Tag() byte
}

type SignRequest struct {
	PubKey []byte
	Msg    []byte
}

func (*SignRequest) Tag() byte { return TagSign }

func (req *SignRequest) Encode() ([]byte, error) {
	if len(req.PubKey) != PubKeySize {
		return nil, errors.Mark(
			errors.Newf("public key must be %d bytes, got %d", PubKeySize, len(req.PubKey)),
			ErrProtocol,
		)
	}
	buf := make([]byte, 0, 1+PubKeySize+4+len(req.Msg))
	buf = append(buf, TagSign)
	buf = append(buf, req.PubKey...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(req.Msg)))
	buf = append(buf, req.Msg...)
	return buf, nil
}

type SignResponse struct {
	Sig []byte
}

func (*SignResponse) Tag() byte { return TagSign }

func (resp *SignResponse) Encode() ([]byte, error) {
	if len(resp.Sig) != SignatureSize {
		return nil, errors.Mark(
			errors.Newf("signature must be %d bytes, got %d", SignatureSize, len(resp.Sig)),
			ErrProtocol,
		)
	}
	buf := make([]byte, 0, 1+SignatureSize)
	buf = append(buf, TagSign)
	buf = append(buf, resp.Sig...)
	return buf, nil
}

// ReadRequest reads and decodes exactly one request frame from r. A clean
// close before the tag byte surfaces as io.EOF so that the caller can
// distinguish a graceful termination from a broken frame.
func ReadRequest(r io.Reader, maxMsgLen uint32) (Request, error) {
	if maxMsgLen == 0 {
		maxMsgLen = DefaultMaxMsgLen
	}
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Mark(errors.Wrap(err, "failed to read request tag"), ErrConnection)
	}
	switch tag[0] {
	case TagSign:
		return readSignRequest(r, maxMsgLen)
	default:
		return nil, errors.Mark(errors.Newf("unknown request tag 0x%02x", tag[0]), ErrProtocol)
	}
}

func readSignRequest(r io.Reader, maxMsgLen uint32) (*SignRequest, error) {
	var fixed [PubKeySize + 4]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, wrapReadErr(err, "sign request header")
	}
	msgLen := binary.BigEndian.Uint32(fixed[PubKeySize:])
	if msgLen > maxMsgLen {
		return nil, errors.Mark(
			errors.Newf("message length %d exceeds maximum %d", msgLen, maxMsgLen),
			ErrProtocol,
		)
	}
	pk := make([]byte, PubKeySize)
	copy(pk, fixed[:PubKeySize])
	msg := make([]byte, msgLen)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, wrapReadErr(err, "sign request message")
	}
	return &SignRequest{PubKey: pk, Msg: msg}, nil
}

// ReadResponse reads and decodes exactly one response frame from r. It is the
// validator-side counterpart of ReadRequest and is used by the tests' mock
// validator.
func ReadResponse(r io.Reader) (Response, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Mark(errors.Wrap(err, "failed to read response tag"), ErrConnection)
	}
	switch tag[0] {
	case TagSign:
		sig := make([]byte, SignatureSize)
		if _, err := io.ReadFull(r, sig); err != nil {
			return nil, wrapReadErr(err, "sign response")
		}
		return &SignResponse{Sig: sig}, nil
	default:
		return nil, errors.Mark(errors.Newf("unknown response tag 0x%02x", tag[0]), ErrProtocol)
	}
}

// wrapReadErr classifies a mid-frame read failure: a short read is a broken
// frame, anything else is a transport failure.
func wrapReadErr(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Mark(errors.Wrapf(err, "truncated %s", what), ErrProtocol)
	}
	return errors.Mark(errors.Wrapf(err, "failed to read %s", what), ErrConnection)
}
