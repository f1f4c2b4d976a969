package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

const sessionCookie = "token"

// fakeBackend is a minimal cookie-authenticated REST backend.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "jwt-" + creds.Email, Path: "/"})
		_, _ = w.Write([]byte(`{"message":"Logged in","user":{"role":"admin"}}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(sessionCookie)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authorized"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"_id":        "u-1",
				"name":       "Pat",
				"email":      ck.Value[len("jwt-"):],
				"role":       "publisher",
				"isVerified": true,
			},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
		_, _ = w.Write([]byte(`{"message":"Logged out"}`))
	})
	mux.HandleFunc("GET /api/auth/verify-email/{token}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("token") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid or expired token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Email verified"}`))
	})
	mux.HandleFunc("POST /api/auth/reset-password/{token}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Password required"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Password reset"}`))
	})
	mux.HandleFunc("POST /api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Mail sent"}`))
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Check your inbox"}`))
	})
	mux.HandleFunc("POST /api/user/become-publisher", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(sessionCookie); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"message":"You are now a publisher"}`))
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "lamp" {
			_, _ = w.Write([]byte(`{"products":[{"_id":"p2","name":"Lamp","price":"19.5","stock":3,"category":{"name":"Home"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"products":[{"_id":"p1","name":"Mug","price":7,"category":"Kitchen"},{"_id":"p2","name":"Lamp","price":19.5}]}`))
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Product not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"_id":"p1","name":"Mug","description":"Ceramic","price":7}`))
	})
	mux.HandleFunc("GET /api/admin/overview", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":4,"orders":2}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...ClientOption) *Client {
	t.Helper()
	c, err := NewClient(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := NewClient("/api")
	assert.Error(t, err)

	_, err = NewClient("::bad")
	assert.Error(t, err)
}

func TestClient_LoginThenMe(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthenticated)

	res, err := c.Login(ctx, Credentials{Email: "pat@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Logged in", res.Message)
	assert.NotEmpty(t, c.Cookies())

	id, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, &auth.Identity{
		ID:            "u-1",
		DisplayName:   "Pat",
		Email:         "pat@example.com",
		Role:          auth.RolePublisher,
		EmailVerified: true,
	}, id)
}

func TestClient_LoginFailureCarriesBackendMessage(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)

	_, err := c.Login(context.Background(), Credentials{Email: "pat@example.com", Password: "wrong"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", Message(err, "Something went wrong"))
	assert.Empty(t, c.Cookies())
}

func TestClient_LoginRequiresCredentials(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	_, err := c.Login(context.Background(), Credentials{Email: "pat@example.com"})
	assert.Error(t, err)
	assert.Equal(t, "Something went wrong", Message(err, "Something went wrong"))
}

func TestClient_LogoutAndClearCookies(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Login(ctx, Credentials{Email: "pat@example.com", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = c.Login(ctx, Credentials{Email: "pat@example.com", Password: "secret"})
	require.NoError(t, err)
	c.ClearCookies()
	assert.Empty(t, c.Cookies())
}

func TestClient_SeededCookies(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv, WithCookies([]*http.Cookie{{Name: sessionCookie, Value: "jwt-seed@example.com"}}))

	id, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "seed@example.com", id.Email)
}

func TestClient_AccountFlows(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	msg, err := c.Signup(ctx, SignupRequest{Name: "Pat", Email: "pat@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Check your inbox", msg.Message)

	msg, err = c.VerifyEmail(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "Email verified", msg.Message)

	_, err = c.VerifyEmail(ctx, "stale")
	assert.Equal(t, "Invalid or expired token", Message(err, ""))

	_, err = c.VerifyEmail(ctx, "")
	assert.Error(t, err)

	msg, err = c.ForgotPassword(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Mail sent", msg.Message)

	msg, err = c.ResetPassword(ctx, "tok", "n3w")
	require.NoError(t, err)
	assert.Equal(t, "Password reset", msg.Message)

	_, err = c.ResetPassword(ctx, "tok", "")
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestClient_BecomePublisher(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.BecomePublisher(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	_, err = c.Login(ctx, Credentials{Email: "pat@example.com", Password: "secret"})
	require.NoError(t, err)
	msg, err := c.BecomePublisher(ctx)
	require.NoError(t, err)
	assert.Equal(t, "You are now a publisher", msg.Message)
}

func TestClient_Catalog(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	products, err := c.Products(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, 7.0, products[0].Price)
	assert.Equal(t, "Kitchen", products[0].CategoryName())

	filtered, err := c.Products(ctx, "lamp")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 19.5, filtered[0].Price)
	assert.Equal(t, 3, filtered[0].Stock)
	assert.Equal(t, "Home", filtered[0].CategoryName())

	p, err := c.Product(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ceramic", p.Description)

	_, err = c.Product(ctx, "missing")
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "Product not found", Message(err, ""))
}

func TestClient_Fetch(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)

	doc, err := c.Fetch(context.Background(), PathAdminOverview)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"users": 4.0, "orders": 2.0}, doc)

	_, err = c.Fetch(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_TransportError(t *testing.T) {
	srv := fakeBackend(t)
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
