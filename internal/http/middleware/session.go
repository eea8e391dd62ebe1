package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mushinbuys/leadform/internal/form"
)

type contextKey string

const (
	formControllerKey contextKey = "formController"
	sessionIDKey      contextKey = "formSessionID"
)

// SessionResolver turns a bearer handle into the session's controller.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, *form.Controller, error)
}

// FormSession requires a valid session handle and puts its controller on the context.
func FormSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing session token", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			id, ctrl, err := resolver.Resolve(r.Context(), tokenString)
			if err != nil || ctrl == nil {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionIDKey, id)
			ctx = context.WithValue(ctx, formControllerKey, ctrl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FormFromContext returns the session's controller if present.
func FormFromContext(ctx context.Context) (*form.Controller, bool) {
	ctrl, ok := ctx.Value(formControllerKey).(*form.Controller)
	return ctrl, ok && ctrl != nil
}

// SessionIDFromContext returns the session id if present.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// WithForm attaches a controller to ctx the same way FormSession does.
func WithForm(ctx context.Context, sessionID string, ctrl *form.Controller) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, formControllerKey, ctrl)
}
