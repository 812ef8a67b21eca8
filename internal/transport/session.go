package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName identifies the shopper's cart session cookie.
const SessionCookieName = "cart_session"

const sessionCookieMaxAge = 30 * 24 * time.Hour

// shopperSession returns the session ID from the request cookie, issuing
// a new one when absent. The cart persists under this ID across reloads.
func shopperSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
