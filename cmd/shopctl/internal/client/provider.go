package client

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

// Provider lazily builds the credential store, SDK client and session for
// one command invocation.
type Provider struct {
	serverURL string
	storeDSN  string
	logger    *slog.Logger
	metrics   *session.Metrics
	httpCli   *http.Client

	storeOnce sync.Once
	store     credstore.Store
	storeErr  error

	sdkOnce   sync.Once
	sdkClient *sdk.Client
	sdkErr    error

	sessionOnce sync.Once
	sequencer   *session.Sequencer
	sessionErr  error

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// Option configures a Provider.
type Option func(*Provider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

func WithMetrics(metrics *session.Metrics) Option {
	return func(p *Provider) { p.metrics = metrics }
}

// WithHTTPClient overrides the base HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) { p.httpCli = hc }
}

// WithStore injects an already open store instead of opening storeDSN.
func WithStore(store credstore.Store) Option {
	return func(p *Provider) {
		p.storeOnce.Do(func() { p.store = store })
	}
}

// NewProvider constructs a Provider bound to the given server and store DSN.
func NewProvider(serverURL, storeDSN string, opts ...Option) *Provider {
	p := &Provider{
		serverURL: serverURL,
		storeDSN:  storeDSN,
		logger:    slog.Default(),
		// no timeout: a hung account call keeps the command waiting until interrupted
		httpCli:   &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ServerURL() string {
	return p.serverURL
}

func (p *Provider) Logger() *slog.Logger {
	return p.logger
}

func (p *Provider) Metrics() *session.Metrics {
	return p.metrics
}

// Store opens the credential store once.
func (p *Provider) Store(ctx context.Context) (credstore.Store, error) {
	p.storeOnce.Do(func() {
		ctx, cancel := ensureTimeout(ctx, 5*time.Second)
		defer cancel()
		p.store, p.storeErr = credstore.Open(ctx, p.storeDSN)
	})
	return p.store, p.storeErr
}

// SDKClient returns a client whose authenticated calls read the bearer token
// from the store on every request.
func (p *Provider) SDKClient(ctx context.Context) (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		store, err := p.Store(ctx)
		if err != nil {
			p.sdkErr = err
			return
		}
		p.sdkClient = sdk.NewClient(p.serverURL,
			sdk.WithHTTPClient(p.httpCli),
			sdk.WithTokenSource(credstore.TokenSource(context.WithoutCancel(ctx), store)),
		)
	})
	return p.sdkClient, p.sdkErr
}

// Session returns this invocation's session sequencer. Each invocation is
// one mount, so there is exactly one.
func (p *Provider) Session(ctx context.Context) (*session.Sequencer, error) {
	p.sessionOnce.Do(func() {
		store, err := p.Store(ctx)
		if err != nil {
			p.sessionErr = err
			return
		}
		api, err := p.SDKClient(ctx)
		if err != nil {
			p.sessionErr = err
			return
		}
		m := session.NewManager(store, api,
			session.WithLogger(p.logger),
			session.WithMetrics(p.metrics),
		)
		p.sequencer = session.NewSequencer(m)
	})
	return p.sequencer, p.sessionErr
}

// Close discards an unsettled bootstrap and releases the store. Calls after
// the first return the first result.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if p.sequencer != nil {
			p.sequencer.Stop()
		}
		if p.store != nil {
			p.closeErr = credstore.Close(p.store)
		}
	})
	return p.closeErr
}

// Closed reports whether Close was called.
func (p *Provider) Closed() bool {
	return p.closed.Load()
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	return ctxWithTimeout, cancel
}
