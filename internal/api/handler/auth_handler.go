package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/dto"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/service"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgResetRequested     = "If that address belongs to an account, a reset link is on its way."
	msgInvalidResetLink   = "The reset link is invalid or has expired. Please request a new one."
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	// baseURL prefixes reset links. Request headers are never used for it.
	baseURL string
	view
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, baseURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		baseURL:     strings.TrimRight(baseURL, "/"),
		view:        view{sessions: sessions},
	}
}

// RegisterForm handles GET /register
func (h *AuthHandler) RegisterForm() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		if who != nil {
			c.Redirect(http.StatusFound, "/")
			return
		}
		h.render(c, http.StatusOK, "register.html", who, gin.H{"title": "Register"})
	})
}

// Register handles POST /register
func (h *AuthHandler) Register() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		var form dto.RegisterForm
		err := bindForm(c, &form)
		var user *domain.User
		if err == nil {
			user, err = h.authService.Register(c.Request.Context(), service.RegisterInput{
				Username:             form.Username,
				Password:             form.Password,
				PasswordConfirmation: form.Password2,
				Employer:             form.IsEmployer(),
				Email:                form.Email,
			})
		}

		if err != nil {
			if msg, ok := validationMessage(err); ok {
				form.Password, form.Password2 = "", ""
				h.render(c, http.StatusBadRequest, "register.html", who, gin.H{
					"title": "Register",
					"form":  form,
					"error": msg,
				})
				return
			}
			if errors.Is(err, service.ErrUsernameTaken) {
				h.redirect(c, "/register", session.FlashDanger, "That username is already taken.")
				return
			}
			h.fail(c, who, err, "/register")
			return
		}

		if err := h.sessions.Establish(c, user, false); err != nil {
			h.fail(c, who, err, "/login")
			return
		}
		h.redirect(c, "/", session.FlashSuccess, "Welcome, "+user.Username+"! Your account has been created.")
	})
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		h.render(c, http.StatusOK, "login.html", who, gin.H{"title": "Log in"})
	})
}

// Login handles POST /login
func (h *AuthHandler) Login() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		var form dto.LoginForm
		if err := bindForm(c, &form); err != nil {
			h.redirect(c, "/login", session.FlashDanger, msgInvalidCredentials)
			return
		}

		user, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				h.redirect(c, "/login", session.FlashDanger, msgInvalidCredentials)
				return
			}
			h.fail(c, who, err, "/login")
			return
		}

		if err := h.sessions.Establish(c, user, form.RememberMe()); err != nil {
			h.fail(c, who, err, "/login")
			return
		}
		log.Ctx(c.Request.Context()).Info().Int64("user_id", user.ID).Bool("persistent", form.RememberMe()).Msg("logged in")
		h.redirect(c, "/", session.FlashSuccess, "Logged in as "+user.Username+".")
	})
}

// Logout handles GET /logout
func (h *AuthHandler) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.sessions.Clear(c)
		h.redirect(c, "/", session.FlashInfo, "You have been logged out.")
	}
}

// ResetRequestForm handles GET /reset_password_request
func (h *AuthHandler) ResetRequestForm() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		h.render(c, http.StatusOK, "reset_request.html", who, gin.H{"title": "Reset password"})
	})
}

// ResetRequest handles POST /reset_password_request. The outcome is the same
// for registered and unknown addresses.
func (h *AuthHandler) ResetRequest() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		var form dto.ResetRequestForm
		err := bindForm(c, &form)
		if err == nil {
			err = h.authService.RequestReset(c.Request.Context(), form.Email, h.resetLink)
		}

		if err != nil {
			if msg, ok := validationMessage(err); ok {
				h.render(c, http.StatusBadRequest, "reset_request.html", who, gin.H{
					"title": "Reset password",
					"form":  form,
					"error": msg,
				})
				return
			}
			h.fail(c, who, err, "/reset_password_request")
			return
		}

		h.redirect(c, "/login", session.FlashInfo, msgResetRequested)
	})
}

// ResetForm handles GET /reset_password/:token
func (h *AuthHandler) ResetForm() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		tok := c.Param("token")
		if _, err := h.authService.CheckResetToken(c.Request.Context(), tok); err != nil {
			h.redirect(c, "/reset_password_request", session.FlashWarning, msgInvalidResetLink)
			return
		}
		h.render(c, http.StatusOK, "reset_password.html", who, gin.H{
			"title": "Choose a new password",
			"token": tok,
		})
	})
}

// Reset handles POST /reset_password/:token. A successful reset ends any
// session; the user logs in again with the new password.
func (h *AuthHandler) Reset() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		tok := c.Param("token")

		var form dto.ResetPasswordForm
		err := bindForm(c, &form)
		if err == nil {
			err = h.authService.ResetWithToken(c.Request.Context(), tok, form.Password, form.Password2)
		}

		if err != nil {
			if errors.Is(err, service.ErrInvalidOrExpiredLink) {
				h.redirect(c, "/reset_password_request", session.FlashWarning, msgInvalidResetLink)
				return
			}
			if msg, ok := validationMessage(err); ok {
				h.render(c, http.StatusBadRequest, "reset_password.html", who, gin.H{
					"title": "Choose a new password",
					"token": tok,
					"error": msg,
				})
				return
			}
			h.fail(c, who, err, "/reset_password_request")
			return
		}

		h.sessions.Clear(c)
		h.redirect(c, "/login", session.FlashSuccess, "Your password has been reset. Please log in.")
	})
}

func (h *AuthHandler) resetLink(tok string) string {
	return h.baseURL + "/reset_password/" + url.PathEscape(tok)
}
