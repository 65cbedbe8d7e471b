package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mentorportal/internal/httputil"
)

// Recovery turns a handler panic into a 500 with an error notice.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error",
						map[string]interface{}{"notice": httputil.ErrorNotice("Something went wrong. Please try again.")})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
