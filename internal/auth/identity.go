package auth

// Identity is the authenticated account as reported by the backend's
// current-user endpoint. It is replaced wholesale on every fetch.
type Identity struct {
	ID            string
	DisplayName   string
	Email         string
	Role          Role
	EmailVerified bool
}

// Destination is the dashboard route for the identity's role.
func (i *Identity) Destination() string {
	if i == nil {
		return UserDashboardPath
	}
	return i.Role.Destination()
}

// HasRole reports whether the identity is present and holds role.
func (i *Identity) HasRole(role Role) bool {
	return i != nil && i.Role == role
}
