package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/amm-go-sdk/pkg/config"
	"github.com/ninja0404/amm-go-sdk/pkg/metrics"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// MaxAccountsPerRequest is the getMultipleAccounts key limit.
const MaxAccountsPerRequest = 100

// Account is the subset of account state the SDK consumes.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// AccountFetcher loads accounts in one batch. The result has one entry per
// key, nil for accounts that do not exist.
type AccountFetcher interface {
	GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([]*Account, error)
}

// Client wraps solana-go rpc.Client with retry, timeout, and rate limiting.
type Client struct {
	raw     *solanarpc.Client
	cfg     config.RPCConfig
	limiter *rate.Limiter
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a configured Client.
func NewClient(cfg config.RPCConfig, opts ...Option) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst == 0 {
			burst = int(cfg.RateLimit.RPS * 2)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	log := cfg.Logger
	if log.GetLevel() == zerolog.NoLevel {
		log = zerolog.Nop()
	}

	c := &Client{
		raw:     solanarpc.New(cfg.ResolveRPCURL()),
		cfg:     cfg,
		limiter: limiter,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Raw exposes the underlying solana-go client.
func (c *Client) Raw() *solanarpc.Client {
	return c.raw
}

func (c *Client) commitment() solanarpc.CommitmentType {
	return solanarpc.CommitmentType(c.cfg.Commitment)
}

// GetAccountInfo fetches one account. A missing account is types.ErrAccountNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, key solana.PublicKey) (*Account, error) {
	var out *solanarpc.GetAccountInfoResult
	err := c.call(ctx, "getAccountInfo", func(ctx context.Context) error {
		var err error
		out, err = c.raw.GetAccountInfoWithOpts(ctx, key, &solanarpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: c.commitment(),
		})
		return err
	})
	if errors.Is(err, solanarpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		return nil, fmt.Errorf("%w: %s", types.ErrAccountNotFound, key)
	}
	if err != nil {
		return nil, types.RPCError{Op: "getAccountInfo", Err: err}
	}
	return toAccount(key, out.Value), nil
}

// GetMultipleAccounts fetches keys in chunks of MaxAccountsPerRequest and
// keeps the input order.
func (c *Client) GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([]*Account, error) {
	out := make([]*Account, 0, len(keys))
	for start := 0; start < len(keys); start += MaxAccountsPerRequest {
		chunk := keys[start:min(start+MaxAccountsPerRequest, len(keys))]
		var res *solanarpc.GetMultipleAccountsResult
		err := c.call(ctx, "getMultipleAccounts", func(ctx context.Context) error {
			var err error
			res, err = c.raw.GetMultipleAccountsWithOpts(ctx, chunk, &solanarpc.GetMultipleAccountsOpts{
				Encoding:   solana.EncodingBase64,
				Commitment: c.commitment(),
			})
			return err
		})
		if err != nil {
			return nil, types.RPCError{Op: "getMultipleAccounts", Err: err}
		}
		if len(res.Value) != len(chunk) {
			return nil, types.RPCError{
				Op:  "getMultipleAccounts",
				Err: fmt.Errorf("requested %d accounts, got %d", len(chunk), len(res.Value)),
			}
		}
		for i, acc := range res.Value {
			out = append(out, toAccount(chunk[i], acc))
		}
	}
	return out, nil
}

func toAccount(key solana.PublicKey, acc *solanarpc.Account) *Account {
	if acc == nil {
		return nil
	}
	a := &Account{Address: key, Owner: acc.Owner, Lamports: acc.Lamports}
	if acc.Data != nil {
		a.Data = acc.Data.GetBinary()
	}
	return a
}

// GetLatestBlockhash fetches the latest blockhash at the configured commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*solanarpc.GetLatestBlockhashResult, error) {
	var out *solanarpc.GetLatestBlockhashResult
	err := c.call(ctx, "getLatestBlockhash", func(ctx context.Context) error {
		var err error
		out, err = c.raw.GetLatestBlockhash(ctx, c.commitment())
		return err
	})
	return out, err
}

// SimulateTransaction simulates a transaction for debugging.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction, opts *solanarpc.SimulateTransactionOpts) (*solanarpc.SimulateTransactionResponse, error) {
	var res *solanarpc.SimulateTransactionResponse
	err := c.call(ctx, "simulateTransaction", func(ctx context.Context) error {
		var err error
		res, err = c.raw.SimulateTransactionWithOpts(ctx, tx, opts)
		return err
	})
	return res, err
}

func (c *Client) call(ctx context.Context, op string, fn func(context.Context) error) (err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveRPC(op, time.Since(started), err) }()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if !c.cfg.Retry.Enabled {
		return fn(ctx)
	}

	attempts := c.cfg.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if !types.IsRetryableError(err) || i == attempts-1 {
			break
		}
		backoff := c.backoff(i)
		c.log.Debug().
			Str("op", op).
			Int("attempt", i+1).
			Dur("backoff", backoff).
			Err(err).
			Msg("rpc retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	if !types.IsRetryableError(err) {
		return err
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := c.cfg.Retry.InitialBackoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > c.cfg.Retry.MaxBackoff && c.cfg.Retry.MaxBackoff > 0 {
			delay = c.cfg.Retry.MaxBackoff
			break
		}
	}
	if c.cfg.Retry.Jitter {
		jitter := rand.Int63n(int64(delay/2) + 1)
		delay = delay/2 + time.Duration(jitter)
	}
	return delay
}
