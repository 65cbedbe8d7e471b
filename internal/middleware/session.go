package middleware

import (
	"net/http"
	"time"

	"mentorportal/internal/httputil"

	"github.com/google/uuid"
)

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session assigns every caller a session id. Authenticated callers are keyed
// by their user id so their workspace follows them across browsers; everyone
// else gets a random id in a cookie.
func Session(opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := httputil.GetUserID(r); userID != "" {
				next.ServeHTTP(w, httputil.WithSessionID(r, "user:"+userID))
				return
			}

			id := ""
			if c, err := r.Cookie(opts.CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			// Re-issued on every request so the cookie lives as long as the workspace
			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, httputil.WithSessionID(r, id))
		})
	}
}
