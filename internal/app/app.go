package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/authd/internal/config"
	"github.com/templui/authd/internal/db"
	"github.com/templui/authd/internal/repository"
	"github.com/templui/authd/internal/service"
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	AuthService *service.AuthService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewWithDB(cfg, database), nil
}

// NewWithDB wires the services on top of an already migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.EmailProvider,
		cfg.EmailFrom,
		cfg.ResendAPIKey,
		service.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		},
	)
	authService := service.NewAuthService(
		userRepository,
		service.NewPasswordHasher(cfg.BcryptCost),
		service.NewTokenCodec(cfg.JWTSecret),
		emailService,
		cfg.AppURL,
		cfg.AppName,
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
		cfg.TokenPasswordResetExpiry,
	)

	return &App{
		Cfg:         cfg,
		DB:          database,
		AuthService: authService,
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
