package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/backend"
	"github.com/Eshhar121/ecommerce-frontend/internal/session"
)

type stubBackend struct {
	me func(ctx context.Context) (*auth.Identity, error)
}

func (s *stubBackend) Me(ctx context.Context) (*auth.Identity, error) {
	if s.me == nil {
		return nil, backend.ErrUnauthenticated
	}
	return s.me(ctx)
}

func (s *stubBackend) Login(context.Context, backend.Credentials) (*backend.LoginResult, error) {
	return &backend.LoginResult{}, nil
}

func (s *stubBackend) Logout(context.Context) error { return nil }

func unresolvedProvider() *session.Provider {
	return session.NewProvider(&stubBackend{})
}

func anonymousProvider() *session.Provider {
	p := session.NewProvider(&stubBackend{})
	p.Initialize(context.Background())
	return p
}

func providerAs(role auth.Role) *session.Provider {
	p := session.NewProvider(&stubBackend{me: func(context.Context) (*auth.Identity, error) {
		return &auth.Identity{ID: "u1", Email: "u@example.com", Role: role}, nil
	}})
	p.Initialize(context.Background())
	return p
}

func snapshotAs(role auth.Role) session.Snapshot {
	return session.Snapshot{Identity: &auth.Identity{ID: "u1", Role: role}}
}

func TestDecideAuthenticated(t *testing.T) {
	assert.Equal(t, Decision{Outcome: Pending}, DecideAuthenticated(session.Snapshot{Resolving: true}))
	assert.Equal(t, Decision{Outcome: Redirect, Location: auth.LoginPath}, DecideAuthenticated(session.Snapshot{}))
	for _, role := range auth.Roles() {
		assert.Equal(t, Decision{Outcome: Render}, DecideAuthenticated(snapshotAs(role)), role.String())
	}
}

func TestDecideAnonymous(t *testing.T) {
	assert.Equal(t, Decision{Outcome: Pending}, DecideAnonymous(session.Snapshot{Resolving: true}))
	assert.Equal(t, Decision{Outcome: Render}, DecideAnonymous(session.Snapshot{}))
	for _, role := range auth.Roles() {
		d := DecideAnonymous(snapshotAs(role))
		assert.Equal(t, Redirect, d.Outcome)
		assert.Equal(t, role.Destination(), d.Location)
	}
}

func TestDecideRole(t *testing.T) {
	for _, expected := range auth.Roles() {
		t.Run(expected.String(), func(t *testing.T) {
			assert.Equal(t, Decision{Outcome: Pending}, DecideRole(session.Snapshot{Resolving: true}, expected))
			assert.Equal(t, Decision{Outcome: Redirect, Location: auth.LoginPath}, DecideRole(session.Snapshot{}, expected))

			for _, actual := range auth.Roles() {
				d := DecideRole(snapshotAs(actual), expected)
				if actual == expected {
					assert.Equal(t, Decision{Outcome: Render}, d)
					continue
				}
				// Misrouted visitors go home, never to login.
				assert.Equal(t, Decision{Outcome: Redirect, Location: actual.Destination()}, d)
				assert.NotEqual(t, auth.LoginPath, d.Location)
			}
		})
	}
}

func TestDecide_PendingWhileResolvingEvenWithIdentity(t *testing.T) {
	// Login and logout in flight keep the previous identity visible but
	// the state is unresolved.
	snap := snapshotAs(auth.RoleAdmin)
	snap.Resolving = true

	assert.Equal(t, Pending, DecideAuthenticated(snap).Outcome)
	assert.Equal(t, Pending, DecideAnonymous(snap).Outcome)
	assert.Equal(t, Pending, DecideRole(snap, auth.RoleUser).Outcome)
}

func serveGuarded(t *testing.T, mw func(http.Handler) http.Handler, p *session.Provider) *httptest.ResponseRecorder {
	t.Helper()
	content := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("guarded content"))
	})

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if p != nil {
		v := &session.Visitor{ID: "v1", Session: p}
		req = req.WithContext(session.WithVisitor(req.Context(), v))
	}
	rec := httptest.NewRecorder()
	mw(content).ServeHTTP(rec, req)
	return rec
}

func TestGuards_PendingNeverRedirects(t *testing.T) {
	g := NewGuards(GuardsOptions{})
	guards := map[string]func(http.Handler) http.Handler{
		"authenticated": g.RequireAuthenticated(),
		"anonymous":     g.RequireAnonymous(),
		"admin":         g.RequireRole(auth.RoleAdmin),
	}

	for name, mw := range guards {
		t.Run(name, func(t *testing.T) {
			rec := serveGuarded(t, mw, unresolvedProvider())
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			assert.Equal(t, "1", rec.Header().Get("Refresh"))
			assert.Contains(t, rec.Body.String(), "Loading")
			assert.NotContains(t, rec.Body.String(), "guarded content")
		})
	}
}

func TestGuards_RequireAuthenticated(t *testing.T) {
	mw := NewGuards(GuardsOptions{}).RequireAuthenticated()

	rec := serveGuarded(t, mw, anonymousProvider())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))

	rec = serveGuarded(t, mw, providerAs(auth.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guarded content", rec.Body.String())
}

func TestGuards_RequireAnonymous(t *testing.T) {
	mw := NewGuards(GuardsOptions{}).RequireAnonymous()

	rec := serveGuarded(t, mw, anonymousProvider())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guarded content", rec.Body.String())

	rec = serveGuarded(t, mw, providerAs(auth.RolePublisher))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.PublisherDashboardPath, rec.Header().Get("Location"))
}

func TestGuards_RequireRole(t *testing.T) {
	mw := NewGuards(GuardsOptions{}).RequireRole(auth.RoleAdmin)

	rec := serveGuarded(t, mw, providerAs(auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveGuarded(t, mw, providerAs(auth.RoleUser))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.UserDashboardPath, rec.Header().Get("Location"))

	rec = serveGuarded(t, mw, anonymousProvider())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestGuards_NoVisitorIsAnonymous(t *testing.T) {
	rec := serveGuarded(t, NewGuards(GuardsOptions{}).RequireAuthenticated(), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestGuards_CustomPendingHandler(t *testing.T) {
	g := NewGuards(GuardsOptions{Pending: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})})

	rec := serveGuarded(t, g.RequireAuthenticated(), unresolvedProvider())
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
