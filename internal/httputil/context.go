package httputil

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a shallow copy of the request whose context carries
// the authenticated user's ID. Set once by the auth middleware.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the authenticated user ID stored by the auth
// middleware, or "" on an unauthenticated request.
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
