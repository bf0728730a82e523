package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

type contextKey string

const UserIDKey contextKey = "uid"

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Auth struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

func NewAuth(verifier TokenVerifier, logger *zap.Logger) *Auth {
	return &Auth{verifier: verifier, logger: logger}
}

// RequireAuth rejects requests without a valid Firebase ID token.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		idToken, ok := bearerToken(authHeader)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
			return
		}

		token, err := a.verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			a.logger.Info("token verification failed", zap.Error(err))
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withToken(r.Context(), token)))
	})
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and passes the request through untouched otherwise. Callable endpoints use
// it so they can report "unauthenticated" in their own error format.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if idToken, ok := bearerToken(r.Header.Get("Authorization")); ok {
			token, err := a.verifier.VerifyIDToken(r.Context(), idToken)
			if err == nil {
				r = r.WithContext(withToken(r.Context(), token))
			} else {
				a.logger.Info("ignoring invalid token on optional-auth route", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func withToken(ctx context.Context, token *auth.Token) context.Context {
	return context.WithValue(ctx, UserIDKey, token.UID)
}

// WithUserID returns ctx carrying uid as the authenticated caller.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

// GetUserID extracts the Firebase uid from context
func GetUserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": %q}`, message)))
}
