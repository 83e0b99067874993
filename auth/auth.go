// Package auth defines the pluggable provider contracts the adapter enforces.
// The adapter never makes authentication decisions itself: it extracts the
// bearer credential, asks the provider, and translates the outcome into
// 401/403 short-circuits.
package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrUnauthorized indicates authentication failed or no valid credentials
// were supplied.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller authenticated but is not allowed to
// perform the request.
var ErrForbidden = errors.New("forbidden")

// UserInfo represents an authenticated principal. Implementations should be
// lightweight and safe for concurrent use.
type UserInfo interface {
	// UserID returns the unique identifier for the user.
	UserID() string
	// Claims unmarshals the user's claims into the provided struct reference.
	Claims(ref any) error
}

// TokenAuthenticator validates bearer credentials and returns the associated
// principal. A nil UserInfo or a non-nil error are both treated as an
// authentication failure by the adapter; errors are logged server-side and
// never disclosed to the client.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string, r *http.Request) (UserInfo, error)
}

// PathAuthorizer authorizes an authenticated principal for a concrete
// path+method, with access to the request-scoped context map. When a provider
// implements both PathAuthorizer and UserAuthorizer, PathAuthorizer wins.
type PathAuthorizer interface {
	Authorize(ctx context.Context, path, method string, user UserInfo, requestContext map[string]any) (bool, error)
}

// UserAuthorizer authorizes an authenticated principal against the raw
// request. Providers implementing neither authorizer interface get implicit
// authorization: authenticated implies authorized.
type UserAuthorizer interface {
	AuthorizeUser(ctx context.Context, user UserInfo, r *http.Request) (bool, error)
}
