package core

import (
	"context"
	"io"
	"net"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/validatorlabs/kms/log"
)

// Session is one live connection to a validator. The KMS is the dialing side,
// but once connected it acts as the responder: it reads request frames and
// writes responses. A session never outlives its transport.
type Session struct {
	conn      net.Conn
	keyring   *Keyring
	maxMsgLen uint32
	logger    *log.KMSLogger
}

// NewSession dials the validator and transitions straight to serving.
func NewSession(ctx context.Context, addr string, port uint16, keyring *Keyring, maxMsgLen uint32, logger *log.KMSLogger) (*Session, error) {
	hostport := net.JoinHostPort(addr, strconv.FormatUint(uint64(port), 10))
	logger.Debug("connecting to validator")

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to dial %s", hostport), ErrConnection)
	}
	if maxMsgLen == 0 {
		maxMsgLen = DefaultMaxMsgLen
	}
	return &Session{
		conn:      conn,
		keyring:   keyring,
		maxMsgLen: maxMsgLen,
		logger:    logger,
	}, nil
}

// HandleRequest serves exactly one request frame: read, dispatch, respond.
// A clean close by the peer returns an error marked ErrCloseConn; keyring
// failures terminate the session upward, there is no in-band error reply.
func (s *Session) HandleRequest(ctx context.Context) error {
	req, err := ReadRequest(s.conn, s.maxMsgLen)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.Mark(err, ErrCloseConn)
		}
		return err
	}

	switch req := req.(type) {
	case *SignRequest:
		return s.handleSign(ctx, req)
	default:
		return errors.Mark(errors.Newf("unhandled request type %T", req), ErrProtocol)
	}
}

func (s *Session) handleSign(ctx context.Context, req *SignRequest) error {
	pk, err := PubKeyFromBytes(req.PubKey)
	if err != nil {
		return errors.Mark(err, ErrProtocol)
	}

	sig, err := s.keyring.Sign(ctx, pk, req.Msg)
	if err != nil {
		return err
	}
	s.logger.Debug("signed request", "pubkey", pk.String(), "msg_len", len(req.Msg))

	resp := SignResponse{Sig: sig}
	buf, err := resp.Encode()
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(buf); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to write sign response"), ErrConnection)
	}
	return nil
}

func (s *Session) Close() error {
	return s.conn.Close()
}
