package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/martijn/jobboard/internal/api/middleware"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/service"
	"github.com/rs/zerolog/log"
)

// identityHandler is a handler that is handed the request identity, nil when
// the request is anonymous.
type identityHandler func(c *gin.Context, who *domain.Identity)

func withIdentity(h identityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c, middleware.CurrentIdentity(c))
	}
}

// view renders pages and turns failures into notices, redirects or error
// pages. It is shared by the HTML handlers.
type view struct {
	sessions *session.Manager
}

func (v *view) render(c *gin.Context, status int, name string, who *domain.Identity, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["who"] = who
	data["flashes"] = v.sessions.Flashes(c)
	c.HTML(status, name, data)
}

func (v *view) redirect(c *gin.Context, location, category, message string) {
	if message != "" {
		v.sessions.AddFlash(c, category, message)
	}
	c.Redirect(http.StatusFound, location)
}

func (v *view) requireLogin(c *gin.Context, message string) {
	v.redirect(c, "/login", session.FlashWarning, message)
}

func (v *view) notFound(c *gin.Context, who *domain.Identity) {
	v.render(c, http.StatusNotFound, "error.html", who, gin.H{
		"title":   "Not found",
		"status":  http.StatusNotFound,
		"message": "The page you are looking for does not exist.",
	})
}

// fail handles errors that no handler recovers from itself. Not found gets a
// 404 page, store conflicts a notice on the fallback page and anything else
// a logged, generic 500.
func (v *view) fail(c *gin.Context, who *domain.Identity, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		v.notFound(c, who)
	case errors.Is(err, service.ErrForbidden):
		v.redirect(c, fallback, session.FlashDanger, "You are not allowed to do that.")
	case errors.Is(err, service.ErrStoreIntegrity):
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("store integrity violation")
		v.redirect(c, fallback, session.FlashDanger, "That change conflicts with existing data. Please try again.")
	default:
		_ = c.Error(err)
		v.render(c, http.StatusInternalServerError, "error.html", who, gin.H{
			"title":   "Error",
			"status":  http.StatusInternalServerError,
			"message": "Something went wrong. Please try again later.",
		})
	}
}

var registerTagNames sync.Once

// bindForm binds a posted form. Binding failures come back as a
// *service.ValidationError naming the first offending form field.
func bindForm(c *gin.Context, form interface{}) error {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})

	if err := c.ShouldBind(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return translateFieldError(verrs[0])
		}
		return service.NewValidationError("", "The submitted form could not be read")
	}
	return nil
}

var fieldLabels = map[string]string{
	"username":    "Username",
	"password":    "Password",
	"password2":   "Password confirmation",
	"email":       "Email",
	"title":       "Title",
	"description": "Description",
	"tags":        "Tags",
	"salary":      "Salary",
	"text":        "Response",
	"contact":     "Contact",
	"about":       "About",
	"avatar":      "Avatar",
}

func translateFieldError(fe validator.FieldError) *service.ValidationError {
	field := fe.Field()
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", label)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		msg = "Invalid email address"
	case "url":
		msg = fmt.Sprintf("%s must be a valid URL", label)
	default:
		msg = fmt.Sprintf("%s is invalid", label)
	}
	return service.NewValidationError(field, msg)
}

// validationMessage returns the user-facing message of a validation failure.
func validationMessage(err error) (string, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

// backTo returns the path of the referring page when it is on this site.
func backTo(c *gin.Context, fallback string) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host != c.Request.Host || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	return u.RequestURI()
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
