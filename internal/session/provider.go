// Package session owns each visitor's authenticated identity and the
// operations that change it.
package session

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/backend"
	"github.com/Eshhar121/ecommerce-frontend/internal/telemetry"
)

// ErrAlreadyAuthenticated is returned by Login when an identity is held.
// Route guards keep authenticated visitors away from the login form.
var ErrAlreadyAuthenticated = errors.New("session: already authenticated")

// State is the resolution state derived from a Snapshot.
type State uint8

const (
	StateUnresolved State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	Identity  *auth.Identity
	Resolving bool
}

// State reports UNRESOLVED while a resolution, login or logout is in
// flight, and otherwise whether an identity is held.
func (s Snapshot) State() State {
	switch {
	case s.Resolving:
		return StateUnresolved
	case s.Identity != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Reader is the read-only capability handed to guards and pages.
type Reader interface {
	Session() Snapshot
}

// Backend is the subset of the REST client the provider drives.
type Backend interface {
	Me(ctx context.Context) (*auth.Identity, error)
	Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResult, error)
	Logout(ctx context.Context) error
}

// CredentialSync persists or drops the backend session that stands behind
// the identity. Errors are logged and never change session state.
type CredentialSync interface {
	Save(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Provider is the single owner of one visitor's session.
type Provider struct {
	backend Backend
	logger  *zap.Logger
	metrics *telemetry.SessionMetrics
	creds   CredentialSync

	initOnce sync.Once
	ready    chan struct{}

	// syncMu orders credential writes against epoch changes. Lock it
	// before mu.
	syncMu sync.Mutex

	mu           sync.Mutex
	identity     *auth.Identity
	initializing bool
	inflight     int
	// epoch advances on logout and login so that a fetch which started
	// before either is discarded when it completes.
	epoch uint64
}

var _ Reader = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

func WithMetrics(m *telemetry.SessionMetrics) ProviderOption {
	return func(p *Provider) { p.metrics = m }
}

func WithCredentialSync(c CredentialSync) ProviderOption {
	return func(p *Provider) { p.creds = c }
}

// NewProvider returns an unresolved provider. Call Initialize once.
func NewProvider(b Backend, opts ...ProviderOption) *Provider {
	p := &Provider{
		backend:      b,
		logger:       zap.NewNop(),
		ready:        make(chan struct{}),
		initializing: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session returns a copy of the current state.
func (p *Provider) Session() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Provider) snapshotLocked() Snapshot {
	snap := Snapshot{Resolving: p.initializing || p.inflight > 0}
	if p.identity != nil {
		id := *p.identity
		snap.Identity = &id
	}
	return snap
}

// Ready is closed once the initial resolution has completed.
func (p *Provider) Ready() <-chan struct{} {
	return p.ready
}

// Initialize resolves the current identity. Only the first call does any
// work; later calls return immediately. Failures leave the session
// anonymous and are not reported.
func (p *Provider) Initialize(ctx context.Context) {
	p.initOnce.Do(func() {
		defer close(p.ready)
		p.fetch(ctx, "resolve")

		p.mu.Lock()
		p.initializing = false
		p.mu.Unlock()
	})
}

// Refresh re-fetches the identity, e.g. after a role change, and returns
// the resulting state.
func (p *Provider) Refresh(ctx context.Context) Snapshot {
	p.fetch(ctx, "refresh")
	return p.Session()
}

// Login authenticates with the backend and then re-fetches the identity.
// The login response itself is never trusted for identity. On failure the
// session is left untouched and the backend error is returned as is.
func (p *Provider) Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResult, error) {
	p.syncMu.Lock()
	p.mu.Lock()
	if p.identity != nil {
		p.mu.Unlock()
		p.syncMu.Unlock()
		return nil, ErrAlreadyAuthenticated
	}
	p.inflight++
	p.epoch++
	p.mu.Unlock()
	p.syncMu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inflight--
		p.mu.Unlock()
	}()

	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerSession, "session.Login")
	defer span.End()

	res, err := p.backend.Login(ctx, creds)
	if err != nil {
		telemetry.RecordError(span, err)
		p.metrics.RecordOperation(ctx, "login", "failed")
		return nil, err
	}

	p.advanceEpoch()
	p.fetch(ctx, "login")
	return res, nil
}

// Logout ends the backend session. The local identity is cleared whether
// or not the backend call succeeds.
func (p *Provider) Logout(ctx context.Context) {
	p.syncMu.Lock()
	p.mu.Lock()
	p.epoch++
	p.inflight++
	p.mu.Unlock()
	p.syncMu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerSession, "session.Logout")
	defer span.End()

	outcome := "ok"
	if err := p.backend.Logout(ctx); err != nil {
		telemetry.RecordError(span, err)
		outcome = "backend_failed"
		p.logger.Warn("backend logout failed, clearing session anyway", zap.Error(err))
	}

	p.syncMu.Lock()
	p.mu.Lock()
	p.identity = nil
	p.epoch++
	p.inflight--
	p.mu.Unlock()
	p.clearCredentials(ctx)
	p.syncMu.Unlock()

	p.metrics.RecordOperation(ctx, "logout", outcome)
}

// fetch runs one identity request and applies the result unless a logout
// or login happened after it started.
func (p *Provider) fetch(ctx context.Context, op string) {
	p.mu.Lock()
	started := p.epoch
	p.mu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerSession, "session.fetch",
		attribute.String(telemetry.AttrSessionOp, op))
	defer span.End()

	id, err := p.backend.Me(ctx)

	// The epoch check and the credential write below form one step, so a
	// login or logout can never land between them.
	p.syncMu.Lock()
	defer p.syncMu.Unlock()

	p.mu.Lock()
	if p.epoch != started {
		p.mu.Unlock()
		span.SetAttributes(attribute.String(telemetry.AttrSessionOutcome, "superseded"))
		p.metrics.RecordOperation(ctx, op, "superseded")
		p.logger.Debug("discarding superseded identity fetch", zap.String("op", op))
		return
	}
	if err != nil {
		p.identity = nil
	} else {
		p.identity = id
	}
	p.mu.Unlock()

	switch {
	case err == nil:
		span.SetAttributes(attribute.String(telemetry.AttrSessionOutcome, "authenticated"))
		p.metrics.RecordOperation(ctx, op, "authenticated")
		p.saveCredentials(ctx)
	case errors.Is(err, backend.ErrUnauthenticated):
		span.SetAttributes(attribute.String(telemetry.AttrSessionOutcome, "anonymous"))
		p.metrics.RecordOperation(ctx, op, "anonymous")
		p.clearCredentials(ctx)
	default:
		telemetry.RecordError(span, err)
		p.metrics.RecordOperation(ctx, op, "failed")
		p.logger.Debug("identity fetch failed, treating visitor as anonymous",
			zap.String("op", op), zap.Error(err))
	}
}

func (p *Provider) advanceEpoch() {
	p.syncMu.Lock()
	p.mu.Lock()
	p.epoch++
	p.mu.Unlock()
	p.syncMu.Unlock()
}

func (p *Provider) saveCredentials(ctx context.Context) {
	if p.creds == nil {
		return
	}
	if err := p.creds.Save(ctx); err != nil {
		p.logger.Warn("saving backend credentials failed", zap.Error(err))
	}
}

func (p *Provider) clearCredentials(ctx context.Context) {
	if p.creds == nil {
		return
	}
	if err := p.creds.Clear(ctx); err != nil {
		p.logger.Warn("clearing backend credentials failed", zap.Error(err))
	}
}
