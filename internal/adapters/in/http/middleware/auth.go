// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

type ctxKey string

const (
	ctxKeyUID   ctxKey = "uid"
	ctxKeyEmail ctxKey = "email"
	ctxKeyAdmin ctxKey = "admin"
)

// AuthMiddleware verifies the Firebase ID token and stores uid, email
// and the admin claim in the request context. Admin status comes from
// the `admin` custom claim set on the Firebase account.
type AuthMiddleware struct {
	Auth *fbauth.Client
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.Auth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.Auth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)

		if raw, ok := token.Claims["email"]; ok {
			if e, ok2 := raw.(string); ok2 && strings.TrimSpace(e) != "" {
				ctx = context.WithValue(ctx, ctxKeyEmail, strings.TrimSpace(e))
			}
		}
		if raw, ok := token.Claims["admin"]; ok {
			if b, ok2 := raw.(bool); ok2 && b {
				ctx = context.WithValue(ctx, ctxKeyAdmin, true)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose token lacks the admin claim. It
// is applied after Handler.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			http.Error(w, "forbidden: admin only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUserUID returns the authenticated uid.
func CurrentUserUID(r *http.Request) (string, bool) {
	u, ok := r.Context().Value(ctxKeyUID).(string)
	if !ok || strings.TrimSpace(u) == "" {
		return "", false
	}
	return strings.TrimSpace(u), true
}

// CurrentUserEmail returns the token email if present.
func CurrentUserEmail(r *http.Request) (string, bool) {
	e, ok := r.Context().Value(ctxKeyEmail).(string)
	if !ok || strings.TrimSpace(e) == "" {
		return "", false
	}
	return strings.TrimSpace(e), true
}

// IsAdmin reports whether the request carries the admin claim.
func IsAdmin(r *http.Request) bool {
	b, ok := r.Context().Value(ctxKeyAdmin).(bool)
	return ok && b
}
