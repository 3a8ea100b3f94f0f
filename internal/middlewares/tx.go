package middlewares

import (
	"bytes"
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/GlennEligio/dn-tx/internal/logger"
)

// TxMiddleware wraps an HTTP handler with a database transaction. The
// transaction commits only when the handler responds with a success status;
// an error response or a panic rolls everything back, so a batch request
// that fails midway leaves no partial writes behind. The handler's response
// is buffered and released only after the commit decision, so a failed
// commit turns into a 500 instead of a success status for data that was
// never persisted.
func TxMiddleware(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx, err := db.Beginx()
			if err != nil {
				logger.Log.Errorw("failed to begin transaction", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					tx.Rollback()
					panic(rec)
				}
			}()

			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			ctx := setTxToContext(r.Context(), tx)
			r = r.WithContext(ctx)

			next.ServeHTTP(sw, r)

			if sw.statusCode >= http.StatusBadRequest {
				if err := tx.Rollback(); err != nil {
					logger.Log.Errorw("failed to roll back transaction", "error", err)
				}
				sw.release()
				return
			}

			if err := tx.Commit(); err != nil {
				logger.Log.Errorw("failed to commit transaction", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			sw.release()
		})
	}
}

// statusWriter records the status and buffers the body instead of writing
// them through, so the middleware can still change the response after the
// handler returns.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	return sw.body.Write(b)
}

// release writes the buffered response to the client.
func (sw *statusWriter) release() {
	sw.ResponseWriter.WriteHeader(sw.statusCode)
	if _, err := sw.body.WriteTo(sw.ResponseWriter); err != nil {
		logger.Log.Errorw("failed to write response", "error", err)
	}
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}
