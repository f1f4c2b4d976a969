// Package credstore persists the backend session cookies held for each
// visitor so that a restarted or sibling storefront instance can resume a
// visitor's backend session.
package credstore

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNotFound is returned by Load when nothing is stored for a visitor.
var ErrNotFound = errors.New("credstore: no credentials for visitor")

// Store saves, loads and deletes backend cookies keyed by visitor ID.
type Store interface {
	Load(ctx context.Context, visitorID string) ([]*http.Cookie, error)
	Save(ctx context.Context, visitorID string, cookies []*http.Cookie, ttl time.Duration) error
	Delete(ctx context.Context, visitorID string) error
}

// storedCookie is the persisted form. Jar cookies only carry name and value.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toStored(cookies []*http.Cookie) []storedCookie {
	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		out = append(out, storedCookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func fromStored(stored []storedCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		out = append(out, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return out
}
