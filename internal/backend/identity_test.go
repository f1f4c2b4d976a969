package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

func TestIdentityDecoder(t *testing.T) {
	d, err := NewIdentityDecoder()
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    string
		want    *auth.Identity
		wantErr error
	}{
		{
			name: "admin",
			body: `{"user":{"_id":"a1","name":"Ada","email":"ada@example.com","role":"admin","isVerified":true}}`,
			want: &auth.Identity{ID: "a1", DisplayName: "Ada", Email: "ada@example.com", Role: auth.RoleAdmin, EmailVerified: true},
		},
		{
			name: "unknown role folds to user",
			body: `{"user":{"_id":"g1","email":"g@example.com","role":"guest"}}`,
			want: &auth.Identity{ID: "g1", Email: "g@example.com", Role: auth.RoleUser},
		},
		{
			name: "missing role folds to user",
			body: `{"user":{"_id":"n1","email":"n@example.com","extra":{"x":1}}}`,
			want: &auth.Identity{ID: "n1", Email: "n@example.com", Role: auth.RoleUser},
		},
		{
			name:    "null user",
			body:    `{"user":null}`,
			wantErr: ErrUnauthenticated,
		},
		{
			name:    "no user key",
			body:    `{"message":"ok"}`,
			wantErr: ErrUnauthenticated,
		},
		{
			name:    "missing id",
			body:    `{"user":{"email":"x@example.com","role":"admin"}}`,
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "empty id",
			body:    `{"user":{"_id":"","email":"x@example.com"}}`,
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "role wrong type",
			body:    `{"user":{"_id":"a","email":"x@example.com","role":3}}`,
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "not json",
			body:    `<html>`,
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "array",
			body:    `[]`,
			wantErr: ErrInvalidIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Decode([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
