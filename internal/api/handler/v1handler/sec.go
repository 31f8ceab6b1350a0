package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"domaincheck/internal/config"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"
)

// CtxKey is the context key type for authentication values.
type CtxKey string

const (
	// UserIDKey is the context key under which the authenticated user ID is stored.
	UserIDKey CtxKey = "UserID"
	// AdminKey is the context key under which the admin flag is stored.
	AdminKey CtxKey = "Admin"
)

// Claims are the bearer token claims. Admin gates the administration
// endpoints; there is no user store, the token is the whole identity.
type Claims struct {
	jwt.RegisteredClaims

	Admin bool `json:"adm,omitempty"`
}

// SecHandlerOptions configure the security handler.
type SecHandlerOptions struct {
	// PublicKey is the PEM-encoded RSA public key bearer tokens must be
	// signed against.
	PublicKey string
}

// NewSecHandlerOptions builds SecHandlerOptions from the application
// configuration.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

// SecHandler verifies RS256 bearer tokens and stores the caller's identity
// in the request context.
type SecHandler struct {
	key *rsa.PublicKey
}

// NewSecHandler parses the configured public key and returns the handler.
func NewSecHandler(options *SecHandlerOptions) (*SecHandler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(options.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{key: key}, nil
}

// Verify validates the token and returns a context carrying the user ID and
// admin flag.
func (s *SecHandler) Verify(ctx context.Context, token string) (context.Context, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid bearer token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	ctx = context.WithValue(ctx, UserIDKey, domain.UserID(userID))
	ctx = context.WithValue(ctx, AdminKey, claims.Admin)

	return ctx, nil
}

// Authenticate is the middleware form of Verify for the chi router.
func (s *SecHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

			return
		}

		ctx, err := s.Verify(r.Context(), token)
		if err != nil {
			writeError(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers whose token does not carry the admin claim.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if admin, _ := r.Context().Value(AdminKey).(bool); !admin {
			writeError(w, r, serrors.With(serrors.ErrForbidden, "administrator access required"))

			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext returns the authenticated user ID, or the zero ID
// when the request was not authenticated.
func GetUserIDFromContext(ctx context.Context) domain.UserID {
	id, _ := ctx.Value(UserIDKey).(domain.UserID)

	return id
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}

	return strings.TrimSpace(auth[len(prefix):]), true
}
