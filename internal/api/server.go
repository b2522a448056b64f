package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/handler"
	"github.com/martijn/jobboard/internal/api/middleware"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/api/templates"
	"github.com/martijn/jobboard/internal/core/service"
	"github.com/martijn/jobboard/pkg/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
}

// NewServer creates a new web server
func NewServer(
	cfg *config.Config,
	sessions *session.Manager,
	authService *service.AuthService,
	jobService *service.JobService,
	profileService *service.ProfileService,
) (*Server, error) {
	// Set Gin mode
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// Global middleware
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ErrorHandlerMiddleware())
	router.Use(middleware.IdentityMiddleware(sessions, authService))

	Routes(router, cfg.CORSOrigins, cfg.PublicURL(), sessions, authService, jobService, profileService)

	server := &Server{
		router: router,
		config: cfg,
	}

	return server, nil
}

// Routes registers every page and endpoint of the site on router.
func Routes(
	router *gin.Engine,
	corsOrigins []string,
	baseURL string,
	sessions *session.Manager,
	authService *service.AuthService,
	jobService *service.JobService,
	profileService *service.ProfileService,
) {
	authHandler := handler.NewAuthHandler(authService, sessions, baseURL)
	jobHandler := handler.NewJobHandler(jobService, sessions)
	profileHandler := handler.NewProfileHandler(profileService, sessions)
	apiHandler := handler.NewAPIHandler(jobService)

	router.GET("/", jobHandler.Index())

	// Authentication
	router.GET("/register", authHandler.RegisterForm())
	router.POST("/register", authHandler.Register())
	router.GET("/login", authHandler.LoginForm())
	router.POST("/login", authHandler.Login())
	router.GET("/logout", authHandler.Logout())
	router.GET("/reset_password_request", authHandler.ResetRequestForm())
	router.POST("/reset_password_request", authHandler.ResetRequest())
	router.GET("/reset_password/:token", authHandler.ResetForm())
	router.POST("/reset_password/:token", authHandler.Reset())

	// Jobs and responses
	router.GET("/add", jobHandler.AddForm())
	router.POST("/add", jobHandler.Add())
	router.GET("/job/:id", jobHandler.Detail())
	router.POST("/respond/:id", jobHandler.Respond())
	router.POST("/delete/:id", jobHandler.Delete())
	router.POST("/del_response/:id", jobHandler.DeleteResponse())

	// Profiles
	router.GET("/profile/:username", profileHandler.Show())
	router.POST("/profile/:username", profileHandler.Update())

	// JSON API
	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.CORSMiddleware(corsOrigins))
	{
		apiGroup.GET("/jobs", apiHandler.ListJobs)
		apiGroup.OPTIONS("/jobs", func(c *gin.Context) {})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start with or without SSL
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		log.Info().Str("addr", addr).Msg("starting HTTPS server")
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}

	log.Info().Str("addr", addr).Msg("starting HTTP server")
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
