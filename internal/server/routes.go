package server

import (
	"net/http"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

// Guard names used in the route table.
const (
	GuardNone          = ""
	GuardAnonymous     = "anonymous"
	GuardAuthenticated = "authenticated"
)

// GuardRole names the role guard for role.
func GuardRole(role auth.Role) string {
	return "role:" + role.String()
}

// Route describes one navigable location of the storefront.
type Route struct {
	Method  string
	Pattern string
	Guard   string
	Summary string
}

func (r Route) key() string {
	return r.Method + " " + r.Pattern
}

// Routes is the storefront's route table. NewRouter mounts exactly these.
func Routes() []Route {
	return []Route{
		{http.MethodGet, "/", GuardNone, "Home page with featured products"},
		{http.MethodGet, "/products", GuardNone, "Product list, optional ?search="},
		{http.MethodGet, "/product/{id}", GuardNone, "Product detail"},
		{http.MethodGet, auth.LoginPath, GuardAnonymous, "Login form"},
		{http.MethodPost, auth.LoginPath, GuardAnonymous, "Log in and go to the role's dashboard"},
		{http.MethodGet, "/signup", GuardAnonymous, "Signup form"},
		{http.MethodPost, "/signup", GuardAnonymous, "Create an account"},
		{http.MethodGet, "/forgot-password", GuardNone, "Request a password reset link"},
		{http.MethodPost, "/forgot-password", GuardNone, "Send the reset link"},
		{http.MethodGet, "/reset-password/{token}", GuardNone, "New password form"},
		{http.MethodPost, "/reset-password/{token}", GuardNone, "Set the new password"},
		{http.MethodGet, "/verify-email/{token}", GuardNone, "Confirm an email address"},
		{http.MethodGet, auth.AdminDashboardPath, GuardRole(auth.RoleAdmin), "Admin dashboard, ?panel= selects a panel"},
		{http.MethodGet, auth.PublisherDashboardPath, GuardRole(auth.RolePublisher), "Publisher dashboard, ?panel= selects a panel"},
		{http.MethodGet, auth.UserDashboardPath, GuardRole(auth.RoleUser), "User dashboard, ?panel= selects a panel"},
		{http.MethodPost, "/logout", GuardNone, "Log out, always clears the local session"},
		{http.MethodPost, "/become-publisher", GuardRole(auth.RoleUser), "Apply for the publisher role"},
	}
}
