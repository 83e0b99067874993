package routes

import (
	"fmt"
	"net/http"
)

// Response is a fully-formed HTTP response that ResponseTypeResponse routes
// may return to bypass JSON serialization entirely.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Responder is implemented by handler results that can convert themselves
// into a Response.
type Responder interface {
	Response() *Response
}

// ProtocolResult is the handler result shape for the message-protocol
// response types (a2a, mcp). StatusCode and Header, when set, are copied onto
// the HTTP response before the payload is written. Exactly one of Body and
// Stream should be set; a non-nil Stream is encoded as SSE regardless of the
// route's StreamFormat.
type ProtocolResult struct {
	StatusCode int
	Header     http.Header
	Body       any
	Stream     ChunkStream
}

// HTTPError is an error a handler can return to control the response status.
// Code takes precedence over a numeric Details["status"] entry when both are
// present. For 4xx codes the Message is echoed to the client; 5xx codes are
// replaced with a generic body so internal detail is never disclosed.
type HTTPError struct {
	Code    int
	Message string
	Details map[string]any
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http error %d", e.Code)
	}
	return e.Message
}

// NewHTTPError builds an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}
