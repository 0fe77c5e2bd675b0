package dbx

import (
	"context"
	"database/sql"
	"net/http"
)

type ctxKey struct{}

// WithConn returns a child context carrying conn.
func WithConn(ctx context.Context, conn *sql.Conn) context.Context {
	return context.WithValue(ctx, ctxKey{}, conn)
}

// FromContext returns the connection borrowed for the current request, or
// fallback when none was attached.
func FromContext(ctx context.Context, fallback Handle) Handle {
	if conn, ok := ctx.Value(ctxKey{}).(*sql.Conn); ok && conn != nil {
		return conn
	}
	return fallback
}

// ScopeConn is HTTP middleware that borrows one pooled connection per request
// and returns it to the pool once the handler has finished. If the pool cannot
// hand out a connection, onError is called and the handler is skipped.
func ScopeConn(db *sql.DB, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := db.Conn(r.Context())
			if err != nil {
				onError(w, r, err)
				return
			}
			defer conn.Close()

			next.ServeHTTP(w, r.WithContext(WithConn(r.Context(), conn)))
		})
	}
}
