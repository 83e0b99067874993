package httpadapter

import "strings"

// wildcardMethod matches any HTTP method in route auth rule keys.
const wildcardMethod = "ALL"

// authDecision is the per-request outcome of the route auth resolver.
type authDecision int

const (
	// authDefault falls through to the global policy: auth is required
	// whenever a provider is configured.
	authDefault authDecision = iota
	authRequired
	authNotRequired
)

// authRules holds the per-route auth overrides, keyed "METHOD:PATH" or
// "METHOD:PATH/*". Read-only after construction.
type authRules map[string]bool

// resolve looks up the auth decision for a concrete request. Exact
// method+path keys win over path wildcards, longer wildcard prefixes win over
// shorter ones, and the concrete method always wins over the ALL wildcard.
// This lets a broad rule like "ALL:/admin/*" coexist with a more specific
// public exception such as "GET:/admin/public".
func (rules authRules) resolve(method, path string) authDecision {
	if len(rules) == 0 {
		return authDefault
	}
	path = normalizePath(path)

	for _, m := range [2]string{strings.ToUpper(method), wildcardMethod} {
		if v, ok := rules[m+":"+path]; ok {
			return decisionOf(v)
		}
		for prefix := path; prefix != "" && prefix != "/"; prefix = parentPath(prefix) {
			if v, ok := rules[m+":"+prefix+"/*"]; ok {
				return decisionOf(v)
			}
		}
		if v, ok := rules[m+":/*"]; ok {
			return decisionOf(v)
		}
	}
	return authDefault
}

func decisionOf(required bool) authDecision {
	if required {
		return authRequired
	}
	return authNotRequired
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// parentPath strips the last path segment: "/a/b" -> "/a", "/a" -> "".
func parentPath(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return ""
	}
	return p[:i]
}
