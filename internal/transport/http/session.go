package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Sessions hands out the anonymous session id cookie.
type Sessions struct {
	cookie string
	ttl    time.Duration
}

func NewSessions(cookie string, ttl time.Duration) *Sessions {
	return &Sessions{cookie: cookie, ttl: ttl}
}

// ID returns the caller's session id, issuing a new cookie when absent or malformed.
func (s *Sessions) ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
