// Package authtest provides trivial auth providers for tests and local
// development environments where a real token authority is unavailable.
package authtest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aymaneallaoui/elysia-mastra-adapter/auth"
)

// Static authenticates tokens against a fixed token→userID map.
type Static struct {
	// Tokens maps bearer token values to user IDs.
	Tokens map[string]string
	// Claims, when non-nil, is returned for every authenticated user.
	Claims map[string]any
}

// NewStatic builds a Static provider from a token→userID map.
func NewStatic(tokens map[string]string) *Static {
	return &Static{Tokens: tokens}
}

func (s *Static) AuthenticateToken(ctx context.Context, token string, r *http.Request) (auth.UserInfo, error) {
	uid, ok := s.Tokens[token]
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	return &staticUser{id: uid, claims: s.Claims}, nil
}

type staticUser struct {
	id     string
	claims map[string]any
}

func (u *staticUser) UserID() string { return u.id }

func (u *staticUser) Claims(ref any) error {
	if u.claims == nil {
		return nil
	}
	b, err := json.Marshal(u.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, ref)
}

// NoAuth always authenticates as the configured user. Useful for development
// servers that want the handler contract of an authenticated request without
// a token authority.
type NoAuth struct {
	UserID string
}

// NewNoAuth creates a NoAuth provider; an empty userID defaults to "test-user".
func NewNoAuth(userID string) *NoAuth {
	if userID == "" {
		userID = "test-user"
	}
	return &NoAuth{UserID: userID}
}

func (n *NoAuth) AuthenticateToken(ctx context.Context, token string, r *http.Request) (auth.UserInfo, error) {
	return &staticUser{id: n.UserID}, nil
}
