package cli

import (
	"context"
	"fmt"

	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/core/repository"
	"github.com/martijn/jobboard/internal/core/service"
	"github.com/martijn/jobboard/internal/core/token"
	"github.com/martijn/jobboard/internal/infrastructure/mail"
	"github.com/martijn/jobboard/internal/infrastructure/sqlite"
	"github.com/martijn/jobboard/internal/infrastructure/throttle"
	"github.com/martijn/jobboard/internal/logger"
	"github.com/martijn/jobboard/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "JobBoard - a small job posting marketplace",
	Long: `JobBoard lets employers publish job postings and job seekers respond to them.

It provides:
- Job listing and search
- Registration, login and password reset by email
- Profiles with bio and avatar
- A JSON API listing all jobs
- User management and demo data from the command line`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(cfg.LogLevel, cfg.LogFormat)
		if cfg.GeneratedSecret {
			log.Warn().Msg("dev mode: no secret_key configured, using a random one; sessions and reset links die with this process")
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); defaults and JOBBOARD_* environment variables apply without one")
}

// initServices initializes all services
func initServices(ctx context.Context) (*Services, error) {
	// Initialize database
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	userRepo := sqlite.NewUserRepository(db)
	jobRepo := sqlite.NewJobRepository(db)
	responseRepo := sqlite.NewResponseRepository(db)

	tokens, err := token.NewService(cfg.SecretKey, cfg.JWTAlgorithm)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	sessions, err := session.NewManager(cfg.SecretKey, cfg.JWTAlgorithm, cfg.SessionLifetime, cfg.SecureCookies())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sessions: %w", err)
	}

	services := &Services{
		DB:       db,
		UserRepo: userRepo,
		Sessions: sessions,
	}

	mailer := newMailer(services)

	// A nil *RedisThrottle must not end up inside the interface
	var resetThrottle service.Throttle
	if t := throttle.New(ctx, throttle.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Window:   cfg.ResetThrottle,
	}, log.Logger); t != nil {
		services.Throttle = t
		resetThrottle = t
	}

	credentials := service.NewCredentials(cfg.BcryptCost)

	// Initialize services
	services.AuthService = service.NewAuthService(userRepo, credentials, tokens, mailer, resetThrottle, cfg.ResetTokenMaxAge)
	services.JobService = service.NewJobService(jobRepo, responseRepo)
	services.ProfileService = service.NewProfileService(userRepo, jobRepo, responseRepo)
	services.SeedService = service.NewSeedService(userRepo, jobRepo, responseRepo, credentials)

	return services, nil
}

func newMailer(services *Services) service.Mailer {
	var mailer service.Mailer
	switch cfg.Mail.Driver {
	case "smtp":
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		})
	default:
		mailer = mail.NewLogMailer(log.Logger)
	}

	if cfg.Mail.Async {
		services.AsyncMailer = mail.NewAsyncMailer(mailer, cfg.Mail.QueueSize, log.Logger)
		return services.AsyncMailer
	}
	return mailer
}

// Services holds all initialized services
type Services struct {
	DB             *sqlite.DB
	UserRepo       repository.UserRepository
	Sessions       *session.Manager
	AsyncMailer    *mail.AsyncMailer
	Throttle       *throttle.RedisThrottle
	AuthService    *service.AuthService
	JobService     *service.JobService
	ProfileService *service.ProfileService
	SeedService    *service.SeedService
}

// Close closes all resources
func (s *Services) Close() {
	if s.AsyncMailer != nil {
		s.AsyncMailer.Stop()
	}
	if s.Throttle != nil {
		s.Throttle.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
