package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

// Read endpoints that back dashboard panels. Where the backend exposes the
// same collection under two paths the admin path is canonical.
const (
	PathMyOrders        = "/orders/my"
	PathMyReviews       = "/user/reviews"
	PathWishlist        = "/wishlist"
	PathUserProfile     = "/user"
	PathAdminOverview   = "/admin/overview"
	PathAdminUsers      = "/admin/users"
	PathAdminOrders     = "/admin/orders"
	PathAdminProducts   = "/admin/products"
	PathAdminCategories = "/admin/categories"

	PathPublisherProducts  = "/products/publisher"
	PathPublisherReviews   = "/reviews/publisher"
	PathPublisherEarnings  = "/publisher/earnings"
	PathPublisherAnalytics = "/publisher/sales-analytics"
	PathPublisherOrders    = "/publisher/orders"
	PathPublisherProfile   = "/publisher/profile"

	PathProducts = "/products"
)

// Product is a catalog entry.
type Product struct {
	ID          string  `mapstructure:"_id"`
	Name        string  `mapstructure:"name"`
	Description string  `mapstructure:"description"`
	Price       float64 `mapstructure:"price"`
	Image       string  `mapstructure:"image"`
	Stock       int     `mapstructure:"stock"`
	Category    any     `mapstructure:"category"`
}

// CategoryName returns the category label whether the backend sent an id
// string or a populated category object.
func (p Product) CategoryName() string {
	switch c := p.Category.(type) {
	case string:
		return c
	case map[string]any:
		if name, ok := c["name"].(string); ok {
			return name
		}
	}
	return ""
}

// Fetch performs a GET on a read endpoint and returns the decoded JSON
// document as generic values.
func (c *Client) Fetch(ctx context.Context, path string) (any, error) {
	if path == "" {
		return nil, errors.New("fetch: empty path")
	}
	var doc any
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Products lists the catalog, optionally filtered by a search term.
func (c *Client) Products(ctx context.Context, search string) ([]Product, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}

	var body struct {
		Products []map[string]any `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, PathProducts, query, nil, &body); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(body.Products))
	for _, raw := range body.Products {
		p, err := decodeProduct(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Product fetches a single catalog entry.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, errors.New("product id is required")
	}
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, PathProducts+"/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		return nil, err
	}
	p, err := decodeProduct(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeProduct(raw map[string]any) (Product, error) {
	var p Product
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}
