package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/backend"
	"github.com/Eshhar121/ecommerce-frontend/internal/session"
)

const fallbackMessage = "Something went wrong"

type loginForm struct {
	Email string
}

type signupForm struct {
	Name  string
	Email string
}

type tokenForm struct {
	Token string
}

// handlers serves the storefront pages. Every handler runs behind the
// visitor middleware, so a visitor is always on the context.
type handlers struct {
	pages  *pages
	logger *zap.Logger
}

func (h *handlers) visitor(w http.ResponseWriter, r *http.Request) (*session.Visitor, bool) {
	v, ok := session.VisitorFromContext(r.Context())
	if !ok {
		h.logger.Error("no visitor on request", zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return v, ok
}

// formStatus maps a backend failure to the status of the re-rendered form.
func formStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func (h *handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	d := h.pages.data(r, "Login")
	d.Data = loginForm{}
	h.pages.render(w, http.StatusOK, "login.html", d)
}

// login authenticates and redirects to the dashboard of the identity fetched
// afterwards, never to one derived from the login response.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	creds := backend.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		d := h.pages.data(r, "Login")
		d.Data = loginForm{Email: creds.Email}
		d.Error = "Email and password are required"
		h.pages.render(w, http.StatusBadRequest, "login.html", d)
		return
	}

	_, err := v.Session.Login(r.Context(), creds)
	switch {
	case errors.Is(err, session.ErrAlreadyAuthenticated):
		http.Redirect(w, r, v.Session.Session().Identity.Destination(), http.StatusSeeOther)
		return
	case err != nil:
		d := h.pages.data(r, "Login")
		d.Data = loginForm{Email: creds.Email}
		d.Error = backend.Message(err, fallbackMessage)
		h.pages.render(w, formStatus(err), "login.html", d)
		return
	}

	v.Selections.Reset()
	http.Redirect(w, r, v.Session.Session().Identity.Destination(), http.StatusSeeOther)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}
	v.Session.Logout(r.Context())
	v.Selections.Reset()
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

func (h *handlers) signupPage(w http.ResponseWriter, r *http.Request) {
	d := h.pages.data(r, "Sign up")
	d.Data = signupForm{}
	h.pages.render(w, http.StatusOK, "signup.html", d)
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	req := backend.SignupRequest{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	res, err := v.Client.Signup(r.Context(), req)
	if err != nil {
		d := h.pages.data(r, "Sign up")
		d.Data = signupForm{Name: req.Name, Email: req.Email}
		d.Error = backend.Message(err, fallbackMessage)
		h.pages.render(w, formStatus(err), "signup.html", d)
		return
	}

	h.pages.message(w, r, http.StatusOK, "Sign up", message{
		Text:     orDefault(res.Message, "Account created. Check your email to verify it."),
		Link:     auth.LoginPath,
		LinkText: "Go to login",
	})
}

func (h *handlers) forgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	d := h.pages.data(r, "Forgot password")
	d.Data = loginForm{}
	h.pages.render(w, http.StatusOK, "forgot_password.html", d)
}

func (h *handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	d := h.pages.data(r, "Forgot password")
	d.Data = loginForm{Email: email}

	res, err := v.Client.ForgotPassword(r.Context(), email)
	if err != nil {
		d.Error = backend.Message(err, "Failed to send reset link")
		h.pages.render(w, formStatus(err), "forgot_password.html", d)
		return
	}
	d.Notice = orDefault(res.Message, "Reset link sent successfully! Please check the mail")
	h.pages.render(w, http.StatusOK, "forgot_password.html", d)
}

func (h *handlers) resetPasswordPage(w http.ResponseWriter, r *http.Request) {
	d := h.pages.data(r, "Reset password")
	d.Data = tokenForm{Token: chi.URLParam(r, "token")}
	h.pages.render(w, http.StatusOK, "reset_password.html", d)
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	password := r.PostFormValue("password")
	d := h.pages.data(r, "Reset password")
	d.Data = tokenForm{Token: token}

	if password != r.PostFormValue("confirm") {
		d.Error = "Passwords do not match"
		h.pages.render(w, http.StatusBadRequest, "reset_password.html", d)
		return
	}

	res, err := v.Client.ResetPassword(r.Context(), token, password)
	if err != nil {
		d.Error = backend.Message(err, fallbackMessage)
		h.pages.render(w, formStatus(err), "reset_password.html", d)
		return
	}

	h.pages.message(w, r, http.StatusOK, "Reset password", message{
		Text:     orDefault(res.Message, "Password reset successful!"),
		Link:     auth.LoginPath,
		LinkText: "Go to login",
	})
}

func (h *handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	res, err := v.Client.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		text := "Server error. Try again later."
		if backend.IsStatus(err, http.StatusBadRequest) || backend.IsStatus(err, http.StatusNotFound) {
			text = backend.Message(err, fallbackMessage)
		}
		h.pages.message(w, r, formStatus(err), "Verify email", message{Text: "Verification failed. " + text})
		return
	}

	h.pages.message(w, r, http.StatusOK, "Verify email", message{
		Text:     orDefault(res.Message, "Email verified!"),
		Link:     auth.LoginPath,
		LinkText: "Go to login",
	})
}

// becomePublisher applies for the publisher role and re-resolves the
// identity so guards see the new role on the very next navigation.
func (h *handlers) becomePublisher(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	if _, err := v.Client.BecomePublisher(r.Context()); err != nil {
		h.pages.message(w, r, formStatus(err), "Become a publisher", message{
			Text:     backend.Message(err, "Error updating role"),
			Link:     auth.UserDashboardPath,
			LinkText: "Back to dashboard",
		})
		return
	}

	snap := v.Session.Refresh(r.Context())
	v.Selections.Reset()
	if snap.Identity == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, snap.Identity.Destination(), http.StatusSeeOther)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
