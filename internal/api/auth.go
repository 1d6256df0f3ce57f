package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ctxKeySubject ctxKey = "sub"

// WithSubject returns ctx carrying the authenticated subject.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, sub)
}

// SubjectFrom returns the authenticated subject, or "" when auth is off.
func SubjectFrom(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeySubject).(string); ok {
		return s
	}
	return ""
}

// requireBearer validates an HS256 bearer token issued by the identity
// provider and stores its subject in the request context.
func requireBearer(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeErr(w, http.StatusUnauthorized, "missing bearer token", "")
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil {
				writeErr(w, http.StatusUnauthorized, "invalid bearer token", err.Error())
				return
			}
			if claims.Subject == "" {
				writeErr(w, http.StatusUnauthorized, "invalid bearer token", "token has no subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), claims.Subject)))
		})
	}
}
