package core

import (
	"context"
	"runtime/debug"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	api "go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/validatorlabs/kms/internal/telemetry"
	"github.com/validatorlabs/kms/log"
)

// DefaultRespawnDelay is how long a client waits after a session failure
// before respawning. Fixed delay, no backoff.
const DefaultRespawnDelay = 5 * time.Second

var (
	rtyAttNum = uint(3)
	rtyAtt    = retry.Attempts(rtyAttNum)
	rtyDel    = retry.Delay(time.Millisecond * 400)
	rtyErr    = retry.LastErrorOnly(true)
)

// Client supervises the connection to one validator. It does not deal with
// network I/O itself, that is handled inside the Session; the client manages
// spawning sessions, isolating faults and respawning per policy.
type Client struct {
	config       ValidatorConfig
	keyring      *Keyring
	respawnDelay time.Duration
	maxMsgLen    uint32
}

type ClientOption func(*Client)

func WithRespawnDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.respawnDelay = d
		}
	}
}

func WithMaxMsgLen(n uint32) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxMsgLen = n
		}
	}
}

func NewClient(config ValidatorConfig, keyring *Keyring, opts ...ClientOption) *Client {
	c := &Client{
		config:       config,
		keyring:      keyring,
		respawnDelay: DefaultRespawnDelay,
		maxMsgLen:    DefaultMaxMsgLen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) logger() *log.KMSLogger {
	return log.GetLogger().
		WithModule("core.client").
		WithTarget(c.config.Label, c.config.Addr, c.config.Port)
}

// Run is the supervision loop for one validator target. It blocks until the
// session closes gracefully, reconnecting is disabled by config, or ctx is
// canceled.
func (c *Client) Run(ctx context.Context) {
	logger := c.logger()
	attrs := api.WithAttributes(c.config.attributes()...)

	for {
		err := c.runSession(ctx)
		switch {
		case err == nil:
			logger.Info("session closed gracefully")
			return
		case errors.Is(err, ErrFault):
			logger.Error("session fault isolated", err)
		default:
			logger.Error("session terminated", err)
		}
		telemetry.SessionErrorsCounter.Add(ctx, 1, attrs)

		if ctx.Err() != nil {
			logger.Info("client stopped")
			return
		}
		if !c.config.ShouldReconnect() {
			logger.Info("auto-reconnect is disabled, stopping")
			return
		}

		telemetry.SessionRespawnsCounter.Add(ctx, 1, attrs)
		logger.Debug("respawning session", "delay", c.respawnDelay.String())
		select {
		case <-ctx.Done():
			logger.Info("client stopped")
			return
		case <-time.After(c.respawnDelay):
		}
	}
}

// runSession is the fault-isolation boundary: a panic anywhere inside the
// session (including inside a provider backend) is converted into an error
// marked ErrFault instead of taking down the client goroutine and its
// siblings. The keyring stays usable after a recovered fault because it is
// immutable after construction.
func (c *Client) runSession(ctx context.Context) (err error) {
	logger := c.logger()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(
				errors.Newf("session panic: %v\n%s", r, debug.Stack()),
				ErrFault,
			)
		}
	}()

	var session *Session
	if err := retry.Do(func() error {
		s, dialErr := NewSession(ctx, c.config.Addr, c.config.Port, c.keyring, c.maxMsgLen, logger)
		if dialErr != nil {
			return dialErr
		}
		session = s
		return nil
	}, rtyAtt, rtyDel, rtyErr, retry.Context(ctx), retry.OnRetry(func(n uint, err error) {
		logger.Info("retrying to connect to validator",
			"try", n+1,
			"try_limit", rtyAttNum,
			"error", err.Error(),
		)
	})); err != nil {
		return err
	}
	defer session.Close()

	attrs := api.WithAttributes(c.config.attributes()...)
	telemetry.SessionsActiveGauge.Set(1, c.config.attributes()...)
	defer telemetry.SessionsActiveGauge.Set(0, c.config.attributes()...)

	logger.Info("serving signing requests")
	for {
		if err := session.HandleRequest(ctx); err != nil {
			if errors.Is(err, ErrCloseConn) {
				return nil
			}
			return err
		}
		telemetry.SignRequestsCounter.Add(ctx, 1, attrs)
	}
}

// StartService spawns one client per configured validator and blocks until
// every client has stopped.
func StartService(ctx context.Context, validators []ValidatorConfig, keyring *Keyring, opts ...ClientOption) error {
	if len(validators) == 0 {
		return errors.New("no validators configured")
	}
	var eg errgroup.Group
	for _, v := range validators {
		client := NewClient(v, keyring, opts...)
		eg.Go(func() error {
			client.Run(ctx)
			return nil
		})
	}
	return eg.Wait()
}
