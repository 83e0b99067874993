package jwtauth

import (
	"context"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/aymaneallaoui/elysia-mastra-adapter/auth"
)

// EnvConfig is the environment-driven shape for constructing a provider
// without code-level configuration.
type EnvConfig struct {
	Issuer    string        `env:"AUTH_ISSUER,required"`
	Audience  string        `env:"AUTH_AUDIENCE,required"`
	JWKSURL   string        `env:"AUTH_JWKS_URL"`
	Scopes    string        `env:"AUTH_REQUIRED_SCOPES"`
	ScopeAny  bool          `env:"AUTH_SCOPE_MODE_ANY,default=false"`
	Leeway    time.Duration `env:"AUTH_LEEWAY,default=60s"`
	Discovery bool          `env:"AUTH_DISCOVERY,default=true"`
}

// NewFromEnv builds a provider from environment variables. When
// AUTH_DISCOVERY is false (or a JWKS URL is the only key source available)
// the static constructor is used; otherwise OIDC discovery runs against
// AUTH_ISSUER.
func NewFromEnv(ctx context.Context) (auth.TokenAuthenticator, error) {
	var ec EnvConfig
	if err := envdecode.Decode(&ec); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Issuer = ec.Issuer
	cfg.ExpectedAudiences = []string{ec.Audience}
	cfg.ScopeModeAny = ec.ScopeAny
	cfg.Leeway = ec.Leeway
	if ec.Scopes != "" {
		cfg.RequiredScopes = strings.Fields(ec.Scopes)
	}

	if !ec.Discovery || ec.JWKSURL != "" {
		return NewStatic(ctx, cfg, ec.JWKSURL)
	}
	return NewFromDiscovery(ctx, cfg)
}
