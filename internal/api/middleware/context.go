package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID pulls the optional user_id query parameter and stores it on the
// request context for handlers and rate limiting. Ids carried in form or
// JSON bodies are read by the handlers themselves.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("user_id"); id != "" {
			r = r.WithContext(SetUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func SetUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID returns the user id attached to the request, if any.
func GetUserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userIDKey).(string)
	return id, ok
}
