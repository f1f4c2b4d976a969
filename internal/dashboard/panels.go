package dashboard

import (
	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/backend"
)

// Layout is the fixed panel list of one role's dashboard.
type Layout struct {
	Panels  []Panel
	Default string
}

// Panel names double as the ?panel= query value.
const (
	PanelOverview   = "overview"
	PanelUsers      = "users"
	PanelOrders     = "orders"
	PanelProducts   = "products"
	PanelCategories = "categories"
	PanelLogs       = "logs"
	PanelSettings   = "settings"

	PanelAddProduct = "add-product"
	PanelMyProducts = "my-products"
	PanelReviews    = "reviews"
	PanelEarnings   = "earnings"
	PanelAnalytics  = "analytics"
	PanelProfile    = "profile"

	PanelMyOrders   = "my-orders"
	PanelMyReviews  = "my-reviews"
	PanelMyWishlist = "my-wishlist"
)

var layouts = map[auth.Role]Layout{
	auth.RoleAdmin: {
		Default: PanelOverview,
		Panels: []Panel{
			{Name: PanelOverview, Title: "Overview", Endpoint: backend.PathAdminOverview},
			{Name: PanelUsers, Title: "Users", Endpoint: backend.PathAdminUsers},
			{Name: PanelOrders, Title: "Orders", Endpoint: backend.PathAdminOrders},
			{Name: PanelProducts, Title: "Products", Endpoint: backend.PathAdminProducts},
			{Name: PanelCategories, Title: "Categories", Endpoint: backend.PathAdminCategories},
			{Name: PanelLogs, Title: "Logs"},
			{Name: PanelSettings, Title: "Settings"},
		},
	},
	auth.RolePublisher: {
		Default: PanelAddProduct,
		Panels: []Panel{
			{Name: PanelAddProduct, Title: "Add Product"},
			{Name: PanelMyProducts, Title: "My Products", Endpoint: backend.PathPublisherProducts},
			{Name: PanelReviews, Title: "Reviews", Endpoint: backend.PathPublisherReviews},
			{Name: PanelEarnings, Title: "Earnings", Endpoint: backend.PathPublisherEarnings},
			{Name: PanelAnalytics, Title: "Analytics", Endpoint: backend.PathPublisherAnalytics},
			{Name: PanelOrders, Title: "Orders", Endpoint: backend.PathPublisherOrders},
			{Name: PanelProfile, Title: "Profile", Endpoint: backend.PathPublisherProfile},
		},
	},
	auth.RoleUser: {
		Default: PanelMyOrders,
		Panels: []Panel{
			{Name: PanelMyOrders, Title: "My Orders", Endpoint: backend.PathMyOrders},
			{Name: PanelMyReviews, Title: "My Reviews", Endpoint: backend.PathMyReviews},
			{Name: PanelMyWishlist, Title: "My Wishlist", Endpoint: backend.PathWishlist},
			{Name: PanelProfile, Title: "Profile", Endpoint: backend.PathUserProfile},
		},
	},
}

// LayoutFor returns the fixed layout of role. Roles outside the closed set
// get the user layout.
func LayoutFor(role auth.Role) Layout {
	l, ok := layouts[role]
	if !ok {
		l = layouts[auth.RoleUser]
	}
	return Layout{Panels: append([]Panel(nil), l.Panels...), Default: l.Default}
}

// NewRoleShell mounts a fresh shell for role with its fixed layout.
func NewRoleShell(role auth.Role) *Shell {
	l := LayoutFor(role)
	return MustShell(role, l.Panels, l.Default)
}
