package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/backend"
	"github.com/Eshhar121/ecommerce-frontend/internal/credstore"
	"github.com/Eshhar121/ecommerce-frontend/internal/dashboard"
	"github.com/Eshhar121/ecommerce-frontend/internal/telemetry"
)

// Visitor is everything the storefront keeps for one browser.
type Visitor struct {
	ID         string
	Session    *Provider
	Client     *backend.Client
	Selections *dashboard.Selections
}

// RegistryOptions configures a Registry. BackendURL is required.
type RegistryOptions struct {
	BackendURL     string
	BackendTimeout time.Duration
	Transport      http.RoundTripper
	Store          credstore.Store
	CredentialTTL  time.Duration
	MaxVisitors    int
	IdleTTL        time.Duration
	Logger         *zap.Logger
	Metrics        *telemetry.SessionMetrics
}

// Registry hands out one Visitor per visitor ID, creating and initializing
// it on first sight. Idle visitors are evicted; their backend cookies
// survive in the credential store and are restored on the next request.
type Registry struct {
	opts  RegistryOptions
	cache *expirable.LRU[string, *Visitor]
	mu    sync.Mutex
}

// NewRegistry validates opts and builds an empty registry.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.BackendURL == "" {
		return nil, errors.New("session: backend url is required")
	}
	if opts.MaxVisitors <= 0 {
		opts.MaxVisitors = 10000
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = 10 * time.Second
	}
	if opts.Store == nil {
		opts.Store = credstore.NewMemory(opts.MaxVisitors, opts.CredentialTTL)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	r := &Registry{opts: opts}
	r.cache = expirable.NewLRU[string, *Visitor](opts.MaxVisitors, r.onEvict, opts.IdleTTL)
	return r, nil
}

func (r *Registry) onEvict(id string, _ *Visitor) {
	r.opts.Metrics.VisitorEvicted(context.Background())
	r.opts.Logger.Debug("visitor evicted", zap.String("visitor_id", id))
}

// Get returns the visitor for id, creating it if needed. A new visitor's
// session starts resolving in the background; wait on Session.Ready().
func (r *Registry) Get(ctx context.Context, id string) (*Visitor, error) {
	if v, ok := r.touch(id); ok {
		return v, nil
	}

	v, err := r.build(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.cache.Get(id); ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.cache.Add(id, v)
	r.mu.Unlock()

	r.opts.Metrics.VisitorAdded(ctx)
	go v.Session.Initialize(context.WithoutCancel(ctx))
	return v, nil
}

// touch looks id up and slides its idle expiry forward.
func (r *Registry) touch(id string) (*Visitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.cache.Get(id)
	if ok {
		r.cache.Add(id, v)
	}
	return v, ok
}

func (r *Registry) build(ctx context.Context, id string) (*Visitor, error) {
	cookies, err := r.opts.Store.Load(ctx, id)
	if err != nil && !errors.Is(err, credstore.ErrNotFound) {
		r.opts.Logger.Warn("loading backend credentials failed, starting anonymous",
			zap.String("visitor_id", id), zap.Error(err))
		cookies = nil
	}

	client, err := backend.NewClient(r.opts.BackendURL,
		backend.WithTransport(r.opts.Transport),
		backend.WithTimeout(r.opts.BackendTimeout),
		backend.WithCookies(cookies),
	)
	if err != nil {
		return nil, fmt.Errorf("session: create backend client: %w", err)
	}

	logger := r.opts.Logger.With(zap.String("visitor_id", id))
	provider := NewProvider(client,
		WithLogger(logger),
		WithMetrics(r.opts.Metrics),
		WithCredentialSync(&visitorCredentials{
			visitorID: id,
			client:    client,
			store:     r.opts.Store,
			ttl:       r.opts.CredentialTTL,
		}),
	)

	return &Visitor{
		ID:         id,
		Session:    provider,
		Client:     client,
		Selections: dashboard.NewSelections(),
	}, nil
}

// Len reports the number of live visitors.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge drops every visitor.
func (r *Registry) Purge() {
	r.cache.Purge()
}

// visitorCredentials mirrors a visitor's backend cookie jar into the
// credential store.
type visitorCredentials struct {
	visitorID string
	client    *backend.Client
	store     credstore.Store
	ttl       time.Duration
}

func (c *visitorCredentials) Save(ctx context.Context) error {
	return c.store.Save(ctx, c.visitorID, c.client.Cookies(), c.ttl)
}

func (c *visitorCredentials) Clear(ctx context.Context) error {
	c.client.ClearCookies()
	return c.store.Delete(ctx, c.visitorID)
}
