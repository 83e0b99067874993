package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aymaneallaoui/elysia-mastra-adapter/routes"
	"github.com/aymaneallaoui/elysia-mastra-adapter/schema"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sendResult dispatches the handler result on the route's declared response
// type. Exactly one response is written per request.
func (h *Handler) sendResult(ctx context.Context, w http.ResponseWriter, r *http.Request, rt *routes.Route, res any) {
	switch rt.ResponseType {
	case routes.ResponseTypeStream:
		src := chunkSource(res)
		if src == nil {
			h.log.ErrorContext(ctx, "stream.source.missing")
			h.writeHandlerError(ctx, w, errors.New("stream route returned a non-stream result"))
			return
		}
		h.streamResponse(ctx, w, r, streamFormat(rt), src, http.StatusOK)

	case routes.ResponseTypeResponse:
		switch v := res.(type) {
		case *routes.Response:
			h.writeRawResponse(w, v)
		case routes.Responder:
			h.writeRawResponse(w, v.Response())
		default:
			writeJSON(w, http.StatusOK, res)
		}

	case routes.ResponseTypeA2A, routes.ResponseTypeMCP:
		pr, ok := res.(*routes.ProtocolResult)
		if !ok {
			writeJSON(w, http.StatusOK, res)
			return
		}
		for k, vs := range pr.Header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		status := pr.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		if pr.Stream != nil {
			// Protocol streams are always SSE-framed.
			h.streamResponse(ctx, w, r, routes.StreamFormatSSE, pr.Stream, status)
			return
		}
		writeJSON(w, status, pr.Body)

	default: // json
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) writeRawResponse(w http.ResponseWriter, res *routes.Response) {
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	for k, vs := range res.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}

func streamFormat(rt *routes.Route) routes.StreamFormat {
	if rt.StreamFormat == "" {
		return routes.StreamFormatSSE
	}
	return rt.StreamFormat
}

// chunkSource resolves the stream source from a handler result, accepting
// either a ChunkStream directly or anything exposing one via Streamer.
func chunkSource(res any) routes.ChunkStream {
	switch v := res.(type) {
	case routes.ChunkStream:
		return v
	case routes.Streamer:
		return v.Chunks()
	default:
		return nil
	}
}

// writeValidationError emits the 400 VALIDATION_ERROR shape, carrying the
// schema engine's issue list verbatim when one is available.
func (h *Handler) writeValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	body := map[string]any{"error": "VALIDATION_ERROR", "message": err.Error()}
	var se *schema.Error
	if errors.As(err, &se) {
		body["message"] = se.Message
		if len(se.Issues) > 0 {
			body["details"] = se.Issues
		}
	}
	h.log.InfoContext(ctx, "params.validate.fail", slog.String("err", err.Error()))
	writeJSON(w, http.StatusBadRequest, body)
}

// writeHandlerError normalizes an error thrown by a handler into a status
// and JSON body. Precedence: an HTTPError's explicit code, then a numeric
// "status" entry in its details, then validation-shaped errors map to 400,
// everything else is a masked 500.
func (h *Handler) writeHandlerError(ctx context.Context, w http.ResponseWriter, err error) {
	var he *routes.HTTPError
	if errors.As(err, &he) {
		status := he.Code
		if status == 0 {
			status = detailsStatus(he.Details)
		}
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			h.log.ErrorContext(ctx, "handler.fail", slog.Int("status", status), slog.String("err", err.Error()))
			writeJSON(w, status, internalErrorBody())
			return
		}
		h.log.InfoContext(ctx, "handler.reject", slog.Int("status", status), slog.String("err", err.Error()))
		writeJSON(w, status, map[string]any{"error": he.Message})
		return
	}

	var se *schema.Error
	if errors.As(err, &se) {
		h.writeValidationError(ctx, w, se)
		return
	}

	h.log.ErrorContext(ctx, "handler.fail", slog.String("err", err.Error()))
	writeJSON(w, http.StatusInternalServerError, internalErrorBody())
}

func internalErrorBody() map[string]any {
	return map[string]any{
		"error":   "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	}
}

func detailsStatus(details map[string]any) int {
	switch v := details["status"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}
