package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/metrics"
	"github.com/brickshelf/brickshelf/internal/service"
)

// invalidCredentialsMessage is shown for both unknown user names and wrong
// passwords so the login form cannot be used to enumerate accounts.
const invalidCredentialsMessage = "Invalid user name or password"

// AuthHandler handles registration, login, logout and the history page.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	metrics  *metrics.Metrics
	renderer *renderer

	cookieName      string
	cookieSecure    bool
	sessionDuration time.Duration

	logger zerolog.Logger
}

func (h *AuthHandler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "register.html", AuthFormPageData{
		PageData: PageData{Title: "Register - Brickshelf"},
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterError(w, http.StatusBadRequest, "Invalid form data", "", "")
		return
	}

	userName := r.FormValue("userName")
	email := r.FormValue("email")

	_, err := h.auth.Register(r.Context(), service.RegisterInput{
		UserName:        userName,
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("password2"),
		Email:           email,
	})
	if err != nil {
		h.renderRegisterError(w, registerStatus(err), registerMessage(err), userName, email)
		return
	}

	h.metrics.Registrations.Inc()
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "login.html", AuthFormPageData{
		PageData: PageData{Title: "Login - Brickshelf"},
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, http.StatusBadRequest, "Invalid form data", "")
		return
	}

	userName := r.FormValue("userName")

	output, err := h.sessions.Login(r.Context(), service.LoginInput{
		UserName:    userName,
		Password:    r.FormValue("password"),
		ClientAgent: r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.metrics.RecordLogin(metrics.LoginUnknownUser)
			h.renderLoginError(w, http.StatusUnauthorized, invalidCredentialsMessage, userName)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.metrics.RecordLogin(metrics.LoginInvalidPassword)
			h.renderLoginError(w, http.StatusUnauthorized, invalidCredentialsMessage, userName)
		default:
			h.metrics.RecordLogin(metrics.LoginError)
			h.logger.Error().Err(err).Str("user_name", userName).Msg("login failed")
			h.renderLoginError(w, http.StatusInternalServerError, "Something went wrong, please try again", userName)
		}
		return
	}

	h.metrics.RecordLogin(metrics.LoginSuccess)
	h.metrics.ActiveSessions.Inc()
	setSessionCookie(w, h.cookieName, output.Token, h.cookieSecure, h.sessionDuration)
	http.Redirect(w, r, "/sets", http.StatusFound)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error().Err(err).Msg("logout failed")
		} else {
			h.metrics.ActiveSessions.Dec()
		}
	}

	clearSessionCookie(w, h.cookieName)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	user, err := h.auth.GetUser(r.Context(), session.UserName)
	if err != nil {
		h.logger.Error().Err(err).Str("user_name", session.UserName).Msg("failed to load login history")
		h.renderer.renderServerError(w, session.UserName)
		return
	}

	h.renderer.render(w, http.StatusOK, "history.html", HistoryPageData{
		PageData: PageData{
			Title:    "Login History - Brickshelf",
			UserName: session.UserName,
		},
		User: user,
	})
}

func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, status int, message, userName, email string) {
	h.renderer.render(w, status, "register.html", AuthFormPageData{
		PageData: PageData{
			Title: "Register - Brickshelf",
			Error: message,
		},
		FormUserName: userName,
		FormEmail:    email,
	})
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, status int, message, userName string) {
	h.renderer.render(w, status, "login.html", AuthFormPageData{
		PageData: PageData{
			Title: "Login - Brickshelf",
			Error: message,
		},
		FormUserName: userName,
	})
}

// registerMessage maps registration failures to form messages.
func registerMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, service.ErrUserAlreadyExists):
		return "User name or email already taken"
	case errors.Is(err, service.ErrInvalidUserName):
		return "User name must be between 3 and 255 characters"
	case errors.Is(err, service.ErrInvalidEmail):
		return "Please enter a valid email address"
	case errors.Is(err, service.ErrInvalidPassword):
		return "Password must be at least 8 characters"
	default:
		return "There was an error creating the user, please try again"
	}
}

// registerStatus maps registration failures to HTTP status codes.
func registerStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidUserName),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
