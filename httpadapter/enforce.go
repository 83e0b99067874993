package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aymaneallaoui/elysia-mastra-adapter/auth"
)

const bearerPrefix = "Bearer "

// bearerToken extracts the credential from an Authorization header value:
// the remainder after a "Bearer " prefix if present, else the raw header
// value, else empty.
func bearerToken(header string) string {
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return strings.TrimSpace(header)
}

// enforceAuth runs the two-phase auth gate. It returns the authenticated
// principal and true to continue the pipeline, or writes the 401/403 response
// and returns false. Provider errors are logged but never reach the client;
// the only statuses this gate emits are 401 and 403.
func (h *Handler) enforceAuth(ctx context.Context, w http.ResponseWriter, r *http.Request, rc *requestContext) (auth.UserInfo, bool) {
	tok := bearerToken(r.Header.Get("Authorization"))

	user, err := h.authn.AuthenticateToken(ctx, tok, r)
	if err != nil {
		h.log.InfoContext(ctx, "auth.authenticate.fail", slog.String("err", err.Error()))
	}
	if err != nil || user == nil {
		rc.authFailed = true
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return nil, false
	}

	allowed, err := h.authorize(ctx, r, user, rc)
	if err != nil {
		h.log.WarnContext(ctx, "auth.authorize.fail", slog.String("err", err.Error()))
		allowed = false
	}
	if !allowed {
		rc.authFailed = true
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "Forbidden"})
		return nil, false
	}

	return user, true
}

// authorize consults the provider's authorizer shape, preferring the
// path/method form over the principal/request form. Providers implementing
// neither get implicit authorization.
func (h *Handler) authorize(ctx context.Context, r *http.Request, user auth.UserInfo, rc *requestContext) (bool, error) {
	if pa, ok := h.authn.(auth.PathAuthorizer); ok {
		return pa.Authorize(ctx, r.URL.Path, r.Method, user, rc.values)
	}
	if ua, ok := h.authn.(auth.UserAuthorizer); ok {
		return ua.AuthorizeUser(ctx, user, r)
	}
	return true, nil
}
