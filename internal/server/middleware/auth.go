package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type principalContextKey string

const principalKey principalContextKey = "principal"

// Principal is the JWT-derived identity attached to a request.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type authClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ContextWithPrincipal stores the authenticated principal into context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authenticator validates bearer tokens. HS256 only; tokens signed with any
// other method are rejected.
type Authenticator struct {
	Secret []byte
	Issuer string
}

// Parse validates a raw token string and returns its principal.
func (a *Authenticator) Parse(tokenString string) (Principal, error) {
	if len(a.Secret) == 0 {
		return Principal{}, fmt.Errorf("auth is not configured")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return a.Secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("invalid access token")
	}

	if a.Issuer != "" && claims.Issuer != a.Issuer {
		return Principal{}, fmt.Errorf("invalid access token")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return Principal{}, fmt.Errorf("invalid access token")
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("invalid access token")
	}

	return Principal{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, r, "A bearer token is required.")
			return
		}

		principal, err := a.Parse(tokenString)
		if err != nil {
			writeAuthError(w, r, "The access token is invalid.")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// Optional attaches a principal when a valid token is present and lets the
// request through either way. Used on the public note route, where an
// authenticated sender is trusted for name and contact.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenString, ok := bearerToken(r); ok {
			if principal, err := a.Parse(tokenString); err == nil {
				r = r.WithContext(ContextWithPrincipal(r.Context(), principal))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":       "UNAUTHORIZED",
			"message":    message,
			"request_id": GetRequestID(r.Context()),
		},
	})
}
