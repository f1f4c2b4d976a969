package backend

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

const identitySchemaURL = "storefront://schemas/current-user.json"

// identitySchema describes the body of GET /auth/me. Unknown roles are
// allowed here and folded to the user role by auth.ParseRole.
const identitySchema = `{
  "type": "object",
  "required": ["user"],
  "properties": {
    "user": {
      "type": "object",
      "required": ["_id", "email"],
      "properties": {
        "_id":        {"type": "string", "minLength": 1},
        "name":       {"type": "string"},
        "email":      {"type": "string"},
        "role":       {"type": "string"},
        "isVerified": {"type": "boolean"}
      }
    }
  }
}`

type identityPayload struct {
	ID         string `mapstructure:"_id"`
	Name       string `mapstructure:"name"`
	Email      string `mapstructure:"email"`
	Role       string `mapstructure:"role"`
	IsVerified bool   `mapstructure:"isVerified"`
}

// IdentityDecoder turns a current-user response into an auth.Identity.
// It is safe for concurrent use.
type IdentityDecoder struct {
	schema *jsonschema.Schema
}

var defaultIdentityDecoder = sync.OnceValues(NewIdentityDecoder)

// NewIdentityDecoder compiles the current-user schema.
func NewIdentityDecoder() (*IdentityDecoder, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(identitySchema))
	if err != nil {
		return nil, fmt.Errorf("parse identity schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	if err := compiler.AddResource(identitySchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add identity schema: %w", err)
	}

	schema, err := compiler.Compile(identitySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile identity schema: %w", err)
	}
	return &IdentityDecoder{schema: schema}, nil
}

// Decode validates body and maps it to an Identity. A null or missing user
// is reported as ErrUnauthenticated; any other mismatch as ErrInvalidIdentity.
func (d *IdentityDecoder) Decode(body []byte) (*auth.Identity, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	if obj, ok := inst.(map[string]any); ok {
		if user, present := obj["user"]; !present || user == nil {
			return nil, ErrUnauthenticated
		}
	}

	if err := d.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	var payload identityPayload
	if err := mapstructure.Decode(inst.(map[string]any)["user"], &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	return &auth.Identity{
		ID:            payload.ID,
		DisplayName:   payload.Name,
		Email:         payload.Email,
		Role:          auth.ParseRole(payload.Role),
		EmailVerified: payload.IsVerified,
	}, nil
}
