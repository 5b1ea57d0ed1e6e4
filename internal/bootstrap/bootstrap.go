package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/campuspay/studentbank/internal/app/controllers"
	"github.com/campuspay/studentbank/internal/app/migrations"
	"github.com/campuspay/studentbank/internal/app/repositories"
	"github.com/campuspay/studentbank/internal/app/routes"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/config"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/email"
	"github.com/campuspay/studentbank/internal/pkg/filestorage"
	"github.com/campuspay/studentbank/internal/pkg/logger"
	"github.com/campuspay/studentbank/internal/pkg/metrics"
	"github.com/campuspay/studentbank/internal/pkg/webhook"
	"github.com/campuspay/studentbank/internal/pkg/websocket"
	"github.com/campuspay/studentbank/internal/seed"
)

// Dependencies holds everything the server needs to run
type Dependencies struct {
	Config      *config.Config
	DB          *db.PostgresDB
	Repos       *repositories.Repositories
	AuthService services.AuthService
	Hub         *websocket.Hub
	Webhook     *webhook.Notifier
	Router      *gin.Engine
}

// LoadConfigAndSetupLogger loads configuration and configures logging
func LoadConfigAndSetupLogger(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format != "json",
	})

	return cfg, nil
}

// SetupDatabase connects, migrates and seeds the database
func SetupDatabase(ctx context.Context, cfg *config.Config, migrationsDir string) (*db.PostgresDB, *repositories.Repositories, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	migrator := migrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repos := repositories.NewRepositories(database)
	if err := seed.Seed(ctx, repos); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return database, repos, nil
}

// BuildDependencies wires services, controllers and the router together
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, repos *repositories.Repositories) (*Dependencies, error) {
	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub()
	go hub.Run()

	wh := webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.QueueSize)
	notifier := services.NewNotifier(hub, wh)

	mailer := email.NewService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	})

	authService := services.NewAuthService(repos.Students, repos.Admins, repos.Sessions, mailer, services.AuthConfig{
		SessionTTL:     cfg.SessionExpiration(),
		OTPTTL:         cfg.OTPTTL(),
		OTPCooldown:    cfg.OTPResendCooldown(),
		OTPMaxAttempts: cfg.OTP.MaxAttempts,
	})
	studentService := services.NewStudentService(repos.Students, repos.AcademicYears, storage, notifier)
	ledgerService := services.NewLedgerService(repos.Ledger, repos.Transactions, repos.Students, repos.Audit, notifier)
	yearService := services.NewAcademicYearService(repos.AcademicYears, database)
	statusService := services.NewStatusService(database, cfg.Database.DBName)

	cookie := controllers.CookieSettings{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		MaxAge: cfg.SessionExpiration(),
	}

	ctrl := routes.Controllers{
		Auth:          controllers.NewAuthController(authService, cookie),
		Students:      controllers.NewStudentController(studentService, cfg.Server.BaseURL),
		Transactions:  controllers.NewTransactionController(ledgerService),
		AcademicYears: controllers.NewAcademicYearController(yearService),
		System:        controllers.NewSystemController(statusService),
		Export:        controllers.NewExportController(studentService, repos.Transactions, cfg.Server.SchoolName),
		Realtime:      controllers.NewRealtimeController(hub),
	}

	router := SetupRouter(cfg)
	routes.Register(router, ctrl, authService, cfg.Session.CookieName)

	return &Dependencies{
		Config:      cfg,
		DB:          database,
		Repos:       repos,
		AuthService: authService,
		Hub:         hub,
		Webhook:     wh,
		Router:      router,
	}, nil
}

// SetupRouter creates the gin engine with global middleware
func SetupRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(metrics.Middleware())
	return router
}
