package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/littleLane/koa"
)

// jwtClaimsStateKey is the state bag key under which parsed claims are stored.
const jwtClaimsStateKey = "middleware.jwt_claims"

// JWTConfig configures the JWT authentication middleware.
type JWTConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *koa.Context) bool

	// KeyFunc supplies the verification key for a parsed token (required
	// unless constructed through JWT with a signing key)
	KeyFunc jwt.Keyfunc

	// TokenExtractor defines how to extract the token from the request
	// (default: Bearer token from the Authorization header)
	TokenExtractor func(ctx *koa.Context) string

	// Methods restricts accepted signing methods (default: HS256)
	Methods []string

	// ClaimsFactory creates the claims instance tokens are parsed into
	// (default: jwt.MapClaims)
	ClaimsFactory func() jwt.Claims
}

// JWT creates a JWT authentication middleware verifying HS256 tokens signed
// with the given key. Parsed claims are stored in the context state.
//
//	app.Use(middleware.JWT("secret"))
//
//	app.Use(func(ctx *koa.Context, next koa.Next) error {
//		claims, _ := middleware.GetClaims(ctx)
//		...
//	})
func JWT(signingKey string) koa.Middleware {
	if signingKey == "" {
		panic("jwt middleware: signing key is required")
	}
	return JWTWithConfig(JWTConfig{
		KeyFunc: func(t *jwt.Token) (any, error) {
			return []byte(signingKey), nil
		},
	})
}

// JWTWithConfig creates a JWT authentication middleware with custom
// configuration. A missing or invalid token fails the pipeline with
// 401 Unauthorized before deeper layers run. Panics if no KeyFunc is given.
func JWTWithConfig(cfg JWTConfig) koa.Middleware {
	if cfg.KeyFunc == nil {
		panic("jwt middleware: key function is required")
	}
	if cfg.TokenExtractor == nil {
		cfg.TokenExtractor = FromAuthHeader
	}
	if cfg.Methods == nil {
		cfg.Methods = []string{jwt.SigningMethodHS256.Alg()}
	}
	if cfg.ClaimsFactory == nil {
		cfg.ClaimsFactory = func() jwt.Claims {
			return jwt.MapClaims{}
		}
	}

	parser := []jwt.ParserOption{jwt.WithValidMethods(cfg.Methods)}

	return func(ctx *koa.Context, next koa.Next) error {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		raw := cfg.TokenExtractor(ctx)
		if raw == "" {
			return koa.ErrUnauthorized.WithMessage("missing token")
		}

		token, err := jwt.ParseWithClaims(raw, cfg.ClaimsFactory(), cfg.KeyFunc, parser...)
		if err != nil || !token.Valid {
			return koa.ErrUnauthorized.WithMessage("invalid token").WithError(err)
		}

		ctx.Set(jwtClaimsStateKey, token.Claims)
		return next()
	}
}

// FromAuthHeader extracts a Bearer token from the Authorization header.
func FromAuthHeader(ctx *koa.Context) string {
	auth := ctx.Request.Header("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// FromQuery returns a token extractor reading the named query parameter.
func FromQuery(param string) func(ctx *koa.Context) string {
	return func(ctx *koa.Context) string {
		return ctx.Request.Query().Get(param)
	}
}

// GetClaims retrieves the parsed JWT claims from the context state.
func GetClaims(ctx *koa.Context) (jwt.Claims, bool) {
	v, ok := ctx.Get(jwtClaimsStateKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(jwt.Claims)
	return claims, ok
}
