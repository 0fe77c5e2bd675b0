package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/logging"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func withUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the id stored by RequireSession.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// SessionResolver is the part of the session service the guard needs.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (int64, error)
	Touch(ctx context.Context, token string) error
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireSession lets the request through only when the session cookie maps
// to a live session. A session store failure is answered with 503.
func RequireSession(sessions SessionResolver, logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, err := sessions.CurrentUser(ctx, sessionToken(r))
			if err != nil {
				if errors.Is(err, common.ErrorAuthenticationRequired) {
					writeMessage(w, http.StatusUnauthorized, "authentication required")
					return
				}
				logging.FromContext(ctx, logger).Error(ctx, "session lookup failed", "error", err)
				writeMessage(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(ctx, userID)))
		})
	}
}

// SlideSession extends the expiry of the session that authenticated the
// request. It belongs last in a guard chain so rejected requests leave the
// session untouched. Failures are logged and do not block the request.
func SlideSession(sessions SessionResolver, logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID, ok := UserIDFromContext(ctx); ok {
				if err := sessions.Touch(ctx, sessionToken(r)); err != nil {
					logging.FromContext(ctx, logger).Warn(ctx, "session touch failed", "user_id", userID, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIKey checks the x-api-key header against key in constant time.
// An empty configured key rejects everything.
func RequireAPIKey(key string) Middleware {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(common.APIKeyHeaderName))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				logging.FromContext(r.Context(), logging.Nop{}).Debug(r.Context(), "api key rejected", "error", common.ErrorForbidden)
				writeMessage(w, http.StatusForbidden, "API Key is missing or wrong")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
