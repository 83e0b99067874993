// Package httpadapter wires declarative routes into net/http. For every
// request it derives a request-scoped context, enforces the configured auth
// provider, extracts and validates parameters, invokes the route handler, and
// translates the result into the route's declared response shape, including
// the two streaming framings.
package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aymaneallaoui/elysia-mastra-adapter/auth"
	"github.com/aymaneallaoui/elysia-mastra-adapter/internal/logctx"
	"github.com/aymaneallaoui/elysia-mastra-adapter/routes"
)

var _ http.Handler = (*Handler)(nil)

// Option configures the Handler.
type Option func(*newConfig)

type newConfig struct {
	logger    *slog.Logger
	authn     auth.TokenAuthenticator
	rules     map[string]bool
	runtime   any
	tools     map[string]any
	redaction bool
	redactor  func(any) any
}

// WithLogger sets the slog logger used by the adapter. If not provided,
// slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *newConfig) { c.logger = l }
}

// WithAuthProvider attaches the auth provider enforced in front of every
// route. When the provider also implements auth.PathAuthorizer or
// auth.UserAuthorizer, authorization runs after authentication. Without a
// provider the auth gate is inert and all requests pass.
func WithAuthProvider(a auth.TokenAuthenticator) Option {
	return func(c *newConfig) { c.authn = a }
}

// WithRouteAuthRules installs per-route overrides of the auth requirement.
// Keys follow "METHOD:PATH" or "METHOD:PATH/*", with "ALL" as a method
// wildcard; a true value requires auth, false disables it for matching
// requests. The map is copied and never mutated afterwards.
func WithRouteAuthRules(rules map[string]bool) Option {
	return func(c *newConfig) {
		c.rules = make(map[string]bool, len(rules))
		for k, v := range rules {
			c.rules[k] = v
		}
	}
}

// WithRuntime sets the shared runtime handle surfaced to handlers. The
// adapter never writes to it.
func WithRuntime(rt any) Option {
	return func(c *newConfig) { c.runtime = rt }
}

// WithTools sets the shared tool registry surfaced to handlers.
func WithTools(tools map[string]any) Option {
	return func(c *newConfig) { c.tools = tools }
}

// WithoutRedaction disables the per-chunk redaction applied to streamed
// output. Redaction is enabled by default.
func WithoutRedaction() Option {
	return func(c *newConfig) { c.redaction = false }
}

// WithRedactor replaces the default redaction function applied to each chunk
// before serialization.
func WithRedactor(f func(any) any) Option {
	return func(c *newConfig) { c.redaction = true; c.redactor = f }
}

// Handler adapts a route table to net/http. All fields are read-only after
// New returns; per-request state lives on the stack of each ServeHTTP call.
type Handler struct {
	mux     *http.ServeMux
	log     *slog.Logger
	rules   authRules
	authn   auth.TokenAuthenticator
	runtime any
	tools   map[string]any
	redact  func(any) any
}

// compiledRoute pairs a route with its parsed path parameter names and the
// ServeMux pattern it was registered under.
type compiledRoute struct {
	route   *routes.Route
	pattern string
	params  []string
}

// New registers every route on an http.ServeMux and returns the adapter.
// Routes must carry a non-empty method and a path starting with "/"; path
// segments may use either "{name}" or ":name" syntax.
func New(table []routes.Route, opts ...Option) (*Handler, error) {
	cfg := &newConfig{logger: slog.Default(), redaction: true}
	for _, opt := range opts {
		opt(cfg)
	}

	redact := cfg.redactor
	if cfg.redaction && redact == nil {
		redact = redactChunk
	}
	if !cfg.redaction {
		redact = nil
	}

	h := &Handler{
		log:     slog.New(logctx.Handler{Handler: cfg.logger.Handler()}),
		rules:   cfg.rules,
		authn:   cfg.authn,
		runtime: cfg.runtime,
		tools:   cfg.tools,
		redact:  redact,
	}

	mux := http.NewServeMux()
	seen := make(map[string]struct{}, len(table))
	for i := range table {
		cr, err := compileRoute(&table[i])
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cr.pattern]; dup {
			return nil, fmt.Errorf("duplicate route %q", cr.pattern)
		}
		seen[cr.pattern] = struct{}{}
		mux.HandleFunc(cr.pattern, h.serveRoute(cr))
	}
	h.mux = mux
	return h, nil
}

func compileRoute(rt *routes.Route) (*compiledRoute, error) {
	if rt.Method == "" {
		return nil, fmt.Errorf("route %q: method is required", rt.Path)
	}
	if rt.Handler == nil {
		return nil, fmt.Errorf("route %s %s: handler is required", rt.Method, rt.Path)
	}
	if !strings.HasPrefix(rt.Path, "/") {
		return nil, fmt.Errorf("route %s %s: path must start with /", rt.Method, rt.Path)
	}

	method := strings.ToUpper(rt.Method)
	segs := strings.Split(rt.Path, "/")
	var params []string
	for i, seg := range segs {
		switch {
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return nil, fmt.Errorf("route %s %s: empty path parameter", rt.Method, rt.Path)
			}
			params = append(params, name)
			segs[i] = "{" + name + "}"
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			name := seg[1 : len(seg)-1]
			if name == "" {
				return nil, fmt.Errorf("route %s %s: empty path parameter", rt.Method, rt.Path)
			}
			params = append(params, name)
		}
	}

	return &compiledRoute{
		route:   rt,
		pattern: method + " " + strings.Join(segs, "/"),
		params:  params,
	}, nil
}

// ServeHTTP tags the request context for log correlation and hands off to the
// route table.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logctx.WithRequestData(r.Context(), &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
	})
	h.mux.ServeHTTP(w, r.WithContext(ctx))
}

// serveRoute builds the per-request pipeline for one route. Stages run
// strictly in order: context derivation, auth, parameter validation, handler,
// response; a failed stage short-circuits everything after it.
func (h *Handler) serveRoute(cr *compiledRoute) http.HandlerFunc {
	rt := cr.route
	return func(w http.ResponseWriter, r *http.Request) {
		// The request context doubles as the cancellation signal: net/http
		// cancels it on client disconnect, including the case where the
		// connection is already gone when the handler starts.
		ctx := logctx.WithRouteData(r.Context(), &logctx.RouteData{
			Pattern:      cr.pattern,
			ResponseType: string(rt.ResponseType),
		})
		r = r.WithContext(ctx)

		rc := h.deriveContext(ctx, r)

		if h.authn != nil && h.rules.resolve(r.Method, r.URL.Path) != authNotRequired {
			user, ok := h.enforceAuth(ctx, w, r, rc)
			if !ok {
				return
			}
			rc.user = user
			ctx = logctx.WithAuthData(ctx, &logctx.AuthData{UserID: user.UserID()})
			r = r.WithContext(ctx)
		}

		in, ok := h.buildInput(ctx, w, r, cr, rc)
		if !ok {
			return
		}

		res, err := rt.Handler(ctx, in)
		if err != nil {
			h.writeHandlerError(ctx, w, err)
			return
		}

		h.sendResult(ctx, w, r, rt, res)
	}
}
