package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/elnormous/contenttype"

	"github.com/aymaneallaoui/elysia-mastra-adapter/routes"
)

var (
	eventStreamMediaType  = contenttype.NewMediaType("text/event-stream")
	eventStreamMediaTypes = []contenttype.MediaType{eventStreamMediaType}
)

// sseTerminator closes an SSE stream; the record-separator framing emits
// nothing on completion.
var sseTerminator = []byte("data: [DONE]\n\n")

// recordSeparator is the single control byte appended after each JSON record
// in the delimited framing.
const recordSeparator = 0x1e

// flushWriter serializes writes and flushes to the response, and refuses to
// write once the request context is cancelled.
type flushWriter struct {
	w   io.Writer
	f   http.Flusher
	ctx context.Context
	mu  sync.Mutex
}

func (fw *flushWriter) writeFrame(p []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if err := fw.ctx.Err(); err != nil {
		return err
	}
	if _, err := fw.w.Write(p); err != nil {
		return err
	}
	fw.f.Flush()
	return nil
}

// streamResponse pulls chunks from src and writes them to the response in
// the requested framing. Headers are committed before the first chunk, so a
// mid-stream failure can only be signaled by ending the byte stream without
// the completion marker; no partial JSON is ever flushed.
func (h *Handler) streamResponse(ctx context.Context, w http.ResponseWriter, r *http.Request, format routes.StreamFormat, src routes.ChunkStream, status int) {
	defer func() { _ = src.Close() }()

	sse := format != routes.StreamFormatNDJSON
	if sse && r.Header.Get("Accept") != "" {
		if _, _, err := contenttype.GetAcceptableMediaType(r, eventStreamMediaTypes); err != nil {
			h.log.WarnContext(ctx, "stream.accept.unsupported", slog.String("accept", r.Header.Get("Accept")))
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
	}

	f, ok := w.(http.Flusher)
	if !ok {
		h.log.ErrorContext(ctx, "stream.flusher.missing")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if sse {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("X-Accel-Buffering", "no")
	} else {
		w.Header().Set("Content-Type", "text/plain")
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(status)
	f.Flush()

	fw := &flushWriter{w: w, f: f, ctx: ctx}

	for {
		chunk, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if sse {
					if werr := fw.writeFrame(sseTerminator); werr != nil {
						h.log.WarnContext(ctx, "stream.terminator.fail", slog.String("err", werr.Error()))
					}
				}
				h.log.InfoContext(ctx, "stream.end")
				return
			}
			// Upstream failure: end the stream abnormally, no terminator.
			h.log.ErrorContext(ctx, "stream.upstream.fail", slog.String("err", err.Error()))
			return
		}

		if h.redact != nil {
			chunk = h.redact(chunk)
		}

		b, err := json.Marshal(chunk)
		if err != nil {
			h.log.ErrorContext(ctx, "stream.chunk.marshal.fail", slog.String("err", err.Error()))
			return
		}

		var frame []byte
		if sse {
			frame = make([]byte, 0, len(b)+8)
			frame = append(frame, "data: "...)
			frame = append(frame, b...)
			frame = append(frame, '\n', '\n')
		} else {
			frame = append(b, recordSeparator)
		}

		if err := fw.writeFrame(frame); err != nil {
			// Downstream stopped consuming; Close via defer cancels upstream.
			h.log.InfoContext(ctx, "stream.write.fail", slog.String("err", err.Error()))
			return
		}
	}
}
