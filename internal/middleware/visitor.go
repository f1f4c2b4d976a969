package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/session"
)

// VisitorCookieName is the cookie carrying the signed visitor token.
const VisitorCookieName = "storefront_visitor"

// VisitorSource hands out the per-visitor state. *session.Registry
// implements it.
type VisitorSource interface {
	Get(ctx context.Context, id string) (*session.Visitor, error)
}

// VisitorOptions configures the visitor bootstrap middleware.
type VisitorOptions struct {
	Signer *auth.VisitorSigner
	Source VisitorSource
	Secure bool
	Logger *zap.Logger
	// ResolveWait bounds how long a request waits for a new visitor's
	// session to resolve before guards see it as unresolved.
	ResolveWait time.Duration
}

// NewVisitorMiddleware identifies the browser by its signed cookie (issuing
// one when missing or invalid), loads its visitor and stores it on the
// request context. The cookie expiry slides forward on every request.
func NewVisitorMiddleware(opts VisitorOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, token, err := visitorToken(opts.Signer, r)
			if err != nil {
				logger.Error("issuing visitor token failed", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(opts.Signer.TTL().Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			v, err := opts.Source.Get(ctx, id)
			if err != nil {
				logger.Error("loading visitor failed", zap.String("visitor_id", id), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			waitReady(ctx, v.Session, opts.ResolveWait)
			next.ServeHTTP(w, r.WithContext(session.WithVisitor(ctx, v)))
		})
	}
}

// visitorToken returns the visitor ID from the request cookie, or a new one,
// together with a freshly signed token for it.
func visitorToken(signer *auth.VisitorSigner, r *http.Request) (id, token string, err error) {
	if c, cerr := r.Cookie(VisitorCookieName); cerr == nil {
		if id, perr := signer.Parse(c.Value); perr == nil {
			token, err = signer.IssueFor(id)
			return id, token, err
		}
	}
	token, id, err = signer.Issue()
	return id, token, err
}

func waitReady(ctx context.Context, p *session.Provider, wait time.Duration) {
	if wait <= 0 {
		return
	}
	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case <-p.Ready():
	case <-t.C:
	case <-ctx.Done():
	}
}
