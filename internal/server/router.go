package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	storemw "github.com/Eshhar121/ecommerce-frontend/internal/middleware"
	"github.com/Eshhar121/ecommerce-frontend/internal/telemetry"
)

// RouterOptions controls the construction of the storefront router.
// Visitors and Signer are required.
type RouterOptions struct {
	Visitors      storemw.VisitorSource
	Signer        *auth.VisitorSigner
	Logger        *zap.Logger
	ServerMetrics *telemetry.ServerMetrics
	GuardMetrics  *telemetry.GuardMetrics
	CORSOptions   *cors.Options
	// CSRFKey enables CSRF protection of form posts when set (32 bytes).
	CSRFKey       []byte
	SecureCookies bool
	ResolveWait   time.Duration
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the CORS policy for allowed origins.
func DefaultCORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles the storefront: shared middleware, the visitor
// bootstrap, and every entry of Routes behind its guard.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	if opts.Visitors == nil || opts.Signer == nil {
		return nil, errors.New("server: visitors and signer are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p, err := loadPages(logger)
	if err != nil {
		return nil, err
	}
	h := &handlers{pages: p, logger: logger}
	guards := storemw.NewGuards(storemw.GuardsOptions{
		Logger:  logger,
		Metrics: opts.GuardMetrics,
	})

	handlerFor := pageHandlers(h)
	routes := Routes()
	for _, route := range routes {
		if _, ok := handlerFor[route.key()]; !ok {
			return nil, fmt.Errorf("server: no handler for %s", route.key())
		}
		if _, ok := guardFor(guards, route.Guard); !ok {
			return nil, fmt.Errorf("server: unknown guard %q on %s", route.Guard, route.key())
		}
	}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(storemw.NewRequestLogger(logger, opts.ServerMetrics))
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions(nil)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		if len(opts.CSRFKey) > 0 {
			if !opts.SecureCookies {
				r.Use(markPlaintext)
			}
			r.Use(csrf.Protect(opts.CSRFKey,
				csrf.Secure(opts.SecureCookies),
				csrf.Path("/"),
				csrf.SameSite(csrf.SameSiteLaxMode),
				csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					logger.Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
					h.pages.message(w, r, http.StatusForbidden, "Forbidden", message{
						Text:     "Your form expired. Please go back and try again.",
						Link:     "/",
						LinkText: "Back to the shop",
					})
				})),
			))
		}
		r.Use(storemw.NewVisitorMiddleware(storemw.VisitorOptions{
			Signer:      opts.Signer,
			Source:      opts.Visitors,
			Secure:      opts.SecureCookies,
			Logger:      logger,
			ResolveWait: opts.ResolveWait,
		}))

		for _, route := range routes {
			mws, _ := guardFor(guards, route.Guard)
			r.With(mws...).Method(route.Method, route.Pattern, handlerFor[route.key()])
		}
		r.NotFound(h.pages.notFound)
	})

	return r, nil
}

// pageHandlers maps Route.key() to the handler of each route.
func pageHandlers(h *handlers) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /":                              h.home,
		"GET /products":                      h.products,
		"GET /product/{id}":                  h.product,
		"GET " + auth.LoginPath:              h.loginPage,
		"POST " + auth.LoginPath:             h.login,
		"GET /signup":                        h.signupPage,
		"POST /signup":                       h.signup,
		"GET /forgot-password":               h.forgotPasswordPage,
		"POST /forgot-password":              h.forgotPassword,
		"GET /reset-password/{token}":        h.resetPasswordPage,
		"POST /reset-password/{token}":       h.resetPassword,
		"GET /verify-email/{token}":          h.verifyEmail,
		"GET " + auth.AdminDashboardPath:     h.dashboard(auth.RoleAdmin),
		"GET " + auth.PublisherDashboardPath: h.dashboard(auth.RolePublisher),
		"GET " + auth.UserDashboardPath:      h.dashboard(auth.RoleUser),
		"POST /logout":                       h.logout,
		"POST /become-publisher":             h.becomePublisher,
	}
}

func guardFor(g *storemw.Guards, name string) ([]func(http.Handler) http.Handler, bool) {
	switch name {
	case GuardNone:
		return nil, true
	case GuardAnonymous:
		return []func(http.Handler) http.Handler{g.RequireAnonymous()}, true
	case GuardAuthenticated:
		return []func(http.Handler) http.Handler{g.RequireAuthenticated()}, true
	}
	for _, role := range auth.Roles() {
		if name == GuardRole(role) {
			return []func(http.Handler) http.Handler{g.RequireRole(role)}, true
		}
	}
	return nil, false
}

// markPlaintext tells the CSRF middleware the site is served over plain
// HTTP so it skips the TLS-only Referer check.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
