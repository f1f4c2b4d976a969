package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/session"
	"github.com/Eshhar121/ecommerce-frontend/internal/telemetry"
)

// Outcome is what a guard decided to do with a navigation.
type Outcome uint8

const (
	// Render lets the guarded content through.
	Render Outcome = iota
	// Pending shows the neutral placeholder while the session resolves.
	Pending
	// Redirect sends the visitor to Decision.Location.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is the result of evaluating a guard against a session snapshot.
type Decision struct {
	Outcome  Outcome
	Location string
}

var (
	render  = Decision{Outcome: Render}
	pending = Decision{Outcome: Pending}
)

func redirect(location string) Decision {
	return Decision{Outcome: Redirect, Location: location}
}

// DecideAuthenticated admits authenticated visitors and sends anonymous
// ones to the login page.
func DecideAuthenticated(s session.Snapshot) Decision {
	switch s.State() {
	case session.StateUnresolved:
		return pending
	case session.StateAnonymous:
		return redirect(auth.LoginPath)
	default:
		return render
	}
}

// DecideAnonymous is the inverse of DecideAuthenticated. Authenticated
// visitors go to their role's dashboard.
func DecideAnonymous(s session.Snapshot) Decision {
	switch s.State() {
	case session.StateUnresolved:
		return pending
	case session.StateAuthenticated:
		return redirect(s.Identity.Destination())
	default:
		return render
	}
}

// DecideRole admits visitors holding role. An authenticated visitor with a
// different role is sent to their own destination, not to login.
func DecideRole(s session.Snapshot, role auth.Role) Decision {
	switch s.State() {
	case session.StateUnresolved:
		return pending
	case session.StateAnonymous:
		return redirect(auth.LoginPath)
	}
	if !s.Identity.HasRole(role) {
		return redirect(s.Identity.Destination())
	}
	return render
}

// GuardsOptions configures Guards.
type GuardsOptions struct {
	Logger  *zap.Logger
	Metrics *telemetry.GuardMetrics
	// Pending renders the placeholder. Defaults to PendingHandler.
	Pending http.Handler
}

// Guards turns the decision functions into chi-compatible middleware. The
// session is read from the visitor placed on the request context by
// Visitors; a request without one is treated as anonymous.
type Guards struct {
	logger  *zap.Logger
	metrics *telemetry.GuardMetrics
	pending http.Handler
}

// NewGuards builds Guards from opts.
func NewGuards(opts GuardsOptions) *Guards {
	g := &Guards{
		logger:  opts.Logger,
		metrics: opts.Metrics,
		pending: opts.Pending,
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.pending == nil {
		g.pending = PendingHandler()
	}
	return g
}

// RequireAuthenticated guards pages that need a signed-in visitor.
func (g *Guards) RequireAuthenticated() func(http.Handler) http.Handler {
	return g.guard("authenticated", DecideAuthenticated)
}

// RequireAnonymous keeps signed-in visitors off the login and signup pages.
func (g *Guards) RequireAnonymous() func(http.Handler) http.Handler {
	return g.guard("anonymous", DecideAnonymous)
}

// RequireRole guards a role's dashboard.
func (g *Guards) RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return g.guard("role:"+role.String(), func(s session.Snapshot) Decision {
		return DecideRole(s, role)
	})
}

func (g *Guards) guard(name string, decide func(session.Snapshot) Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := decide(snapshotFromRequest(r))
			g.metrics.RecordDecision(r.Context(), name, d.Outcome.String())

			switch d.Outcome {
			case Pending:
				g.pending.ServeHTTP(w, r)
			case Redirect:
				g.logger.Debug("guard redirect",
					zap.String("guard", name),
					zap.String("path", r.URL.Path),
					zap.String("location", d.Location),
				)
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func snapshotFromRequest(r *http.Request) session.Snapshot {
	v, ok := session.VisitorFromContext(r.Context())
	if !ok {
		return session.Snapshot{}
	}
	return v.Session.Session()
}

const pendingPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Loading</title></head>
<body><p>Loading&hellip;</p></body>
</html>
`

// PendingHandler renders the placeholder shown while a session resolves.
// It asks the browser to retry shortly and never redirects.
func PendingHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Refresh", "1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pendingPage))
	})
}
