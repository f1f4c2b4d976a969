package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/backend"
	"github.com/Eshhar121/ecommerce-frontend/internal/dashboard"
)

const featuredProducts = 8

var dashboardTitles = map[auth.Role]string{
	auth.RoleAdmin:     "Admin Dashboard",
	auth.RolePublisher: "Publisher Dashboard",
	auth.RoleUser:      "My Dashboard",
}

type productList struct {
	Search   string
	Products []backend.Product
}

type dashboardPage struct {
	View               dashboard.View
	Content            panelContent
	PanelError         string
	CanBecomePublisher bool
}

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	d := h.pages.data(r, "Home")
	products, err := v.Client.Products(r.Context(), "")
	if err != nil {
		h.logger.Debug("loading featured products failed", zap.Error(err))
		d.Error = backend.Message(err, "Could not load products")
	}
	if len(products) > featuredProducts {
		products = products[:featuredProducts]
	}
	d.Data = products
	h.pages.render(w, http.StatusOK, "home.html", d)
}

func (h *handlers) products(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	d := h.pages.data(r, "Products")
	products, err := v.Client.Products(r.Context(), search)
	if err != nil {
		h.logger.Debug("loading products failed", zap.Error(err))
		d.Error = backend.Message(err, "Could not load products")
	}
	d.Data = productList{Search: search, Products: products}
	h.pages.render(w, http.StatusOK, "products.html", d)
}

func (h *handlers) product(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitor(w, r)
	if !ok {
		return
	}

	p, err := v.Client.Product(r.Context(), chi.URLParam(r, "id"))
	switch {
	case backend.IsStatus(err, http.StatusNotFound), backend.IsStatus(err, http.StatusBadRequest):
		h.pages.notFound(w, r)
		return
	case err != nil:
		h.logger.Debug("loading product failed", zap.Error(err))
		h.pages.message(w, r, http.StatusBadGateway, "Product", message{
			Text:     backend.Message(err, "Could not load this product"),
			Link:     "/products",
			LinkText: "Back to products",
		})
		return
	}

	d := h.pages.data(r, p.Name)
	d.Data = p
	h.pages.render(w, http.StatusOK, "product.html", d)
}

// dashboard renders role's shell. ?panel= switches the active panel; an
// unlisted name is a 404 and leaves the selection alone. Panel fetch
// failures are shown inline and never touch the session.
func (h *handlers) dashboard(role auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := h.visitor(w, r)
		if !ok {
			return
		}

		shell := v.Selections.Shell(role)
		if name := r.URL.Query().Get("panel"); name != "" {
			if err := shell.Select(name); err != nil {
				if errors.Is(err, dashboard.ErrUnknownPanel) {
					h.pages.notFound(w, r)
					return
				}
				h.logger.Error("select panel", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		view := shell.View()
		page := dashboardPage{
			View:               view,
			CanBecomePublisher: role == auth.RoleUser,
		}
		if !view.Active.Static() {
			doc, err := v.Client.Fetch(r.Context(), view.Active.Endpoint)
			if err != nil {
				h.logger.Debug("panel fetch failed",
					zap.String("panel", view.Active.Name), zap.Error(err))
				page.PanelError = backend.Message(err, "Could not load "+view.Active.Title)
			} else {
				page.Content = tabulate(doc)
			}
		}

		d := h.pages.data(r, dashboardTitles[role])
		d.Data = page
		h.pages.render(w, http.StatusOK, "dashboard.html", d)
	}
}
