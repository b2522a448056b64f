package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/dto"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/policy"
	"github.com/martijn/jobboard/internal/core/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	view
}

func NewProfileHandler(profileService *service.ProfileService, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		view:           view{sessions: sessions},
	}
}

// Show handles GET /profile/:username
func (h *ProfileHandler) Show() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		h.renderProfile(c, who, c.Param("username"), http.StatusOK, nil)
	})
}

// Update handles POST /profile/:username
func (h *ProfileHandler) Update() gin.HandlerFunc {
	return withIdentity(func(c *gin.Context, who *domain.Identity) {
		username := c.Param("username")
		if who == nil {
			h.requireLogin(c, "Please log in to edit your profile.")
			return
		}

		var form dto.ProfileForm
		err := bindForm(c, &form)
		if err == nil {
			err = h.profileService.UpdateProfile(c.Request.Context(), who, username, form.About, form.Avatar)
		}

		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				h.redirect(c, profilePath(username), session.FlashDanger, "You can only edit your own profile.")
				return
			}
			if msg, ok := validationMessage(err); ok {
				h.renderProfile(c, who, username, http.StatusBadRequest, gin.H{"form": form, "error": msg})
				return
			}
			h.fail(c, who, err, "/")
			return
		}

		h.redirect(c, profilePath(username), session.FlashSuccess, "Your profile has been updated.")
	})
}

func (h *ProfileHandler) renderProfile(c *gin.Context, who *domain.Identity, username string, status int, extra gin.H) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), username)
	if err != nil {
		h.fail(c, who, err, "/")
		return
	}

	canEdit := policy.CanEditProfile(who, profile.User)
	data := gin.H{
		"title":   profile.User.Username,
		"profile": profile,
		"canEdit": canEdit,
		"form": dto.ProfileForm{
			About:  derefString(profile.User.About),
			Avatar: derefString(profile.User.Avatar),
		},
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "profile.html", who, data)
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
