package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"carbusiness-backend/internal/infra/logging"
)

// Identity is the verified caller extracted from the bearer token. It is
// passed explicitly into use cases; nothing below the web layer reads
// request context for auth.
type Identity struct {
	UserID string
	Email  string
}

type identityCtxKey struct{}

// IdentityFrom returns the verified identity stored by RequireUser.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

type userClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthVerifier validates HS256 bearer tokens issued by the hosted auth
// provider. The provider itself is external; this service only verifies.
type AuthVerifier struct {
	secret []byte
}

func NewAuthVerifier(secret string) *AuthVerifier {
	return &AuthVerifier{secret: []byte(secret)}
}

var errNoBearer = errors.New("missing bearer token")

func (a *AuthVerifier) verify(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return Identity{}, errNoBearer
	}

	var claims userClaims
	tok, err := jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token missing subject")
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// RequireUser rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func (a *AuthVerifier) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.verify(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		ctx := context.WithValue(r.Context(), identityCtxKey{}, id)
		ctx = logging.WithUserID(ctx, id.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdminKey guards the moderation endpoints with a static API key.
func requireAdminKey(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey == "" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if parts[1] != apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
