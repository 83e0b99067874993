// Package routes defines the declarative route descriptors consumed by the
// HTTP adapter. Routes are produced once, at registration time, by an external
// route registry (an agent server's API surface) and are never mutated
// afterwards: the adapter owns them for the process lifetime.
package routes

import (
	"context"

	"github.com/aymaneallaoui/elysia-mastra-adapter/auth"
	"github.com/aymaneallaoui/elysia-mastra-adapter/schema"
)

// ResponseType selects how the adapter translates a handler's result into an
// HTTP response.
type ResponseType string

const (
	// ResponseTypeJSON serializes the handler result as a JSON body.
	// This is the default for routes that leave ResponseType empty.
	ResponseTypeJSON ResponseType = "json"
	// ResponseTypeStream encodes the handler's chunk source as a byte
	// stream using the route's StreamFormat.
	ResponseTypeStream ResponseType = "stream"
	// ResponseTypeResponse passes a fully-formed *Response (or a Responder)
	// through verbatim.
	ResponseTypeResponse ResponseType = "response"
	// ResponseTypeA2A carries an agent-to-agent protocol result: status and
	// headers are copied onto the HTTP response and the payload is either a
	// direct JSON body or a nested stream encoded as SSE.
	ResponseTypeA2A ResponseType = "a2a"
	// ResponseTypeMCP carries a model-context-protocol result with the same
	// translation rules as ResponseTypeA2A.
	ResponseTypeMCP ResponseType = "mcp"
)

// StreamFormat selects the framing used for ResponseTypeStream routes.
type StreamFormat string

const (
	// StreamFormatSSE frames each chunk as a `data: <json>` Server-Sent
	// Event and terminates the stream with `data: [DONE]`.
	StreamFormatSSE StreamFormat = "sse"
	// StreamFormatNDJSON frames each chunk as a JSON record followed by a
	// single 0x1E record-separator byte, with no terminator.
	StreamFormatNDJSON StreamFormat = "ndjson"
)

// HandlerFunc is the abstract handler contract. Handlers receive the merged
// request input and return any JSON-serializable value, a stream source, a
// *Response, a *ProtocolResult, or an error. The context carries the
// per-request cancellation signal; stream-producing handlers are expected to
// observe it between chunks.
type HandlerFunc func(ctx context.Context, in *Input) (any, error)

// Route is an immutable binding of method+path to a handler and its response
// contract. Path segments may be declared either as "{name}" or ":name".
type Route struct {
	Method       string
	Path         string
	Handler      HandlerFunc
	ResponseType ResponseType
	StreamFormat StreamFormat

	// Optional schemas applied by the adapter's parameter pipeline. A nil
	// schema means the corresponding input is accepted as-is.
	PathSchema  schema.Schema
	QuerySchema schema.Schema
	BodySchema  schema.Schema
}

// Input is the merged handler input assembled by the adapter once extraction,
// validation and the auth gate have all succeeded. Request-scoped fields
// (Runtime, Tools, RequestContext, User) are distinct struct fields rather
// than merged keys, so they can never be shadowed by path, query or body data.
type Input struct {
	// PathParams holds the router's matched path segments.
	PathParams map[string]string
	// Query holds one entry per provided query key; values are string for
	// single-valued keys and []string for repeated keys.
	Query map[string]any
	// Body is the decoded request body: the BodySchema's validated value
	// when one is declared, the raw decoded JSON otherwise, nil if absent.
	Body any

	// Runtime is the shared, read-only agent runtime handle.
	Runtime any
	// Tools is the shared, read-only tool registry.
	Tools map[string]any
	// RequestContext is the per-request key/value map merged from the
	// requestContext query parameter and the body's requestContext object
	// (body wins on key collision). It is exclusively owned by this request.
	RequestContext map[string]any
	// User is the authenticated principal, nil when auth was skipped.
	User auth.UserInfo
}
