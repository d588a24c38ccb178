package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/storefrontlab/storefront-backend/api/responses"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
)

// Recoverer converts a handler panic into a logged 500 response so a single
// bad request cannot take the process down. The stack is captured at the
// point of recovery for the log entry.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				cause := recover()
				if cause == nil {
					return
				}
				err := fmt.Errorf("panic: %v", cause)
				ctx := r.Context()
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"panic": fmt.Sprint(cause),
						"stack": string(debug.Stack()),
					})
					logg.Error(logCtx, "request.panic", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unhandled panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
