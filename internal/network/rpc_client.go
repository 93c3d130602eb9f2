package network

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"memecoin-creator/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// Client is the read-only subset of Ethereum JSON-RPC used before a deployment.
type Client interface {
	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// RPCClient implements Client on go-ethereum's ethclient. HTTP endpoints are
// retried with exponential backoff on transport errors, 429 and 5xx.
type RPCClient struct {
	eth     *ethclient.Client
	metrics *observability.Metrics
	label   string
}

var _ Client = (*RPCClient)(nil)

type dialConfig struct {
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	metrics     *observability.Metrics
	label       string
}

// ClientOption configures Dial.
type ClientOption func(*dialConfig)

// WithTimeout bounds one call, retries included.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *dialConfig) {
		c.timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *dialConfig) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *dialConfig) {
		c.retryDelay = d
	}
}

// WithMetrics records call latency and failures, labelled with chainID.
func WithMetrics(m *observability.Metrics, chainID uint64) ClientOption {
	return func(c *dialConfig) {
		c.metrics = m
		c.label = strconv.FormatUint(chainID, 10)
	}
}

// Dial connects to endpoint. For HTTP endpoints no request is made until the
// first call.
func Dial(ctx context.Context, endpoint string, opts ...ClientOption) (*RPCClient, error) {
	cfg := dialConfig{
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := &http.Client{
		Timeout: cfg.timeout,
		Transport: &retryTransport{
			base:        http.DefaultTransport,
			maxRetries:  cfg.maxRetries,
			retryDelay:  cfg.retryDelay,
			maxDelay:    cfg.maxDelay,
			backoffMult: cfg.backoffMult,
		},
	}
	rc, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &RPCClient{
		eth:     ethclient.NewClient(rc),
		metrics: cfg.metrics,
		label:   cfg.label,
	}, nil
}

// Close releases the underlying connection.
func (c *RPCClient) Close() {
	c.eth.Close()
}

// ChainID returns the id reported by eth_chainId.
func (c *RPCClient) ChainID(ctx context.Context) (id uint64, err error) {
	defer c.observe("eth_chainId", time.Now(), &err)

	n, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("eth_chainId: %s out of range", n)
	}
	return n.Uint64(), nil
}

// BlockNumber returns the latest block number.
func (c *RPCClient) BlockNumber(ctx context.Context) (n uint64, err error) {
	defer c.observe("eth_blockNumber", time.Now(), &err)
	return c.eth.BlockNumber(ctx)
}

// BalanceAt returns the latest balance of account in wei.
func (c *RPCClient) BalanceAt(ctx context.Context, account common.Address) (balance *big.Int, err error) {
	defer c.observe("eth_getBalance", time.Now(), &err)
	return c.eth.BalanceAt(ctx, account, nil)
}

func (c *RPCClient) observe(method string, start time.Time, err *error) {
	if c.metrics != nil {
		c.metrics.RecordRPCCall(c.label, method, time.Since(start), *err)
	}
}

// retryTransport retries requests whose body can be replayed.
type retryTransport struct {
	base        http.RoundTripper
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	delay := t.retryDelay
	attemptReq := req

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * t.backoffMult)
			if delay > t.maxDelay {
				delay = t.maxDelay
			}

			attemptReq = req.Clone(ctx)
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("replay request body: %w", err)
				}
				attemptReq.Body = body
			}
		}

		resp, err := t.base.RoundTrip(attemptReq)
		canReplay := req.Body == nil || req.GetBody != nil
		if attempt >= t.maxRetries || !canReplay || !retryable(ctx, resp, err) {
			return resp, err
		}
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}
}

func retryable(ctx context.Context, resp *http.Response, err error) bool {
	if err != nil {
		return ctx.Err() == nil
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}
