package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aymaneallaoui/elysia-mastra-adapter/auth"
)

// requestContextParam is the query parameter (and body key) carrying a
// JSON-encoded request-context map.
const requestContextParam = "requestContext"

// requestContext is the per-request value bag built before any other
// pipeline stage runs. It is exclusively owned by its request; values is
// merged in two phases: query-sourced entries here, body-sourced entries once
// the body has been parsed (body wins on key collision).
type requestContext struct {
	values map[string]any
	user   auth.UserInfo
	// authFailed marks a denied auth gate; set for observability, the
	// pipeline itself short-circuits before any handler runs.
	authFailed bool
}

func (h *Handler) deriveContext(ctx context.Context, r *http.Request) *requestContext {
	rc := &requestContext{values: make(map[string]any)}

	if raw := r.URL.Query().Get(requestContextParam); raw != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			// Malformed context is non-fatal: log and continue without it.
			h.log.WarnContext(ctx, "requestctx.query.malformed", slog.String("err", err.Error()))
		} else {
			for k, v := range m {
				rc.values[k] = v
			}
		}
	}

	return rc
}

// mergeBody folds a requestContext object nested in the request body into the
// context map, completing the two-phase merge started at derivation time.
func (rc *requestContext) mergeBody(body any) {
	m, ok := body.(map[string]any)
	if !ok {
		return
	}
	nested, ok := m[requestContextParam].(map[string]any)
	if !ok {
		return
	}
	for k, v := range nested {
		rc.values[k] = v
	}
}
