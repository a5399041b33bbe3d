package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/service"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the session attached by the middleware, or nil
// when the request is anonymous.
func SessionFromContext(ctx context.Context) *service.Session {
	session, _ := ctx.Value(sessionContextKey).(*service.Session)
	return session
}

// sessionMiddleware resolves the session cookie on every request and, when
// valid, attaches the session to the request context. Anonymous requests
// pass through untouched.
type sessionMiddleware struct {
	sessions   *service.SessionService
	cookieName string
	logger     zerolog.Logger
}

// LoadSession attaches the session for requests carrying a valid cookie.
func (m *sessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.sessions.Validate(r.Context(), cookie.Value)
		if err != nil {
			// Stale or forged cookie; drop it so the browser stops sending it.
			clearSessionCookie(w, m.cookieName)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin redirects anonymous requests to the login page. It must run
// after LoadSession.
func (m *sessionMiddleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookie writes the session cookie for the given token.
func setSessionCookie(w http.ResponseWriter, name, token string, secure bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge / time.Second),
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
