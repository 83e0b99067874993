package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/elnormous/contenttype"

	"github.com/aymaneallaoui/elysia-mastra-adapter/routes"
	"github.com/aymaneallaoui/elysia-mastra-adapter/schema"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// buildInput extracts path params, query params and the body, validates each
// against the route's optional schemas, and assembles the merged handler
// input. On failure it writes the error response and returns false.
func (h *Handler) buildInput(ctx context.Context, w http.ResponseWriter, r *http.Request, cr *compiledRoute, rc *requestContext) (*routes.Input, bool) {
	rt := cr.route

	pathParams := make(map[string]string, len(cr.params))
	for _, name := range cr.params {
		pathParams[name] = r.PathValue(name)
	}

	query := make(map[string]any)
	for k, vs := range r.URL.Query() {
		if k == requestContextParam {
			// Consumed by the context deriver, not handler input.
			continue
		}
		if len(vs) == 1 {
			query[k] = vs[0]
		} else {
			query[k] = append([]string(nil), vs...)
		}
	}

	body, ok := h.decodeBody(ctx, w, r)
	if !ok {
		return nil, false
	}
	rc.mergeBody(body)

	if rt.PathSchema != nil {
		m := make(map[string]any, len(pathParams))
		for k, v := range pathParams {
			m[k] = v
		}
		if _, err := rt.PathSchema.Validate(m); err != nil {
			h.writeValidationError(ctx, w, err)
			return nil, false
		}
	}
	if rt.QuerySchema != nil {
		if _, err := rt.QuerySchema.Validate(query); err != nil {
			h.writeValidationError(ctx, w, err)
			return nil, false
		}
	}
	if rt.BodySchema != nil {
		validated, err := rt.BodySchema.Validate(body)
		if err != nil {
			h.writeValidationError(ctx, w, err)
			return nil, false
		}
		body = validated
	}

	return &routes.Input{
		PathParams:     pathParams,
		Query:          query,
		Body:           body,
		Runtime:        h.runtime,
		Tools:          h.tools,
		RequestContext: rc.values,
		User:           rc.user,
	}, true
}

// decodeBody reads a JSON request body if one is present. Bodies with a
// non-JSON content type are rejected with 415; malformed JSON is a
// validation failure.
func (h *Handler) decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request) (any, bool) {
	if r.Body == nil || r.ContentLength == 0 {
		return nil, true
	}

	if ct, err := contenttype.GetMediaType(r); err != nil || !ct.Matches(jsonMediaType) {
		h.log.WarnContext(ctx, "body.content_type.unsupported")
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{
			"error":   "UNSUPPORTED_MEDIA_TYPE",
			"message": "content-type must be application/json",
		})
		return nil, false
	}

	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.WarnContext(ctx, "body.decode.fail", slog.String("err", err.Error()))
		h.writeValidationError(ctx, w, &schema.Error{Message: "invalid JSON body"})
		return nil, false
	}
	return body, true
}
