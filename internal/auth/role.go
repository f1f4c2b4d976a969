package auth

// Role is the closed set of account roles the storefront routes on.
type Role uint8

const (
	RoleUser Role = iota
	RolePublisher
	RoleAdmin
)

// Route paths shared by guards, handlers and the resolver.
const (
	LoginPath              = "/login"
	UserDashboardPath      = "/dashboard/user"
	PublisherDashboardPath = "/dashboard/publisher"
	AdminDashboardPath     = "/dashboard/admin"
)

// RoleDestinationMap maps each role to its dashboard route.
var RoleDestinationMap = map[Role]string{
	RoleUser:      UserDashboardPath,
	RolePublisher: PublisherDashboardPath,
	RoleAdmin:     AdminDashboardPath,
}

// Roles lists every role in declaration order.
func Roles() []Role {
	return []Role{RoleUser, RolePublisher, RoleAdmin}
}

// ParseRole converts a backend role string. Anything that is not a known
// role, including the empty string, is treated as a regular user.
func ParseRole(s string) Role {
	switch s {
	case "publisher":
		return RolePublisher
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

func (r Role) String() string {
	switch r {
	case RolePublisher:
		return "publisher"
	case RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}

// Destination returns the dashboard route for r.
func (r Role) Destination() string {
	if dest, ok := RoleDestinationMap[r]; ok {
		return dest
	}
	return UserDashboardPath
}

// DestinationFor resolves a raw role string to its dashboard route.
// Unknown roles resolve to the user dashboard.
func DestinationFor(role string) string {
	return ParseRole(role).Destination()
}
