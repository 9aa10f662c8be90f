package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/internhub/internal/app/auth"
	appControllers "github.com/yigit/internhub/internal/app/controllers"
	appMigrations "github.com/yigit/internhub/internal/app/migrations"
	appRepos "github.com/yigit/internhub/internal/app/repositories"
	appRoutes "github.com/yigit/internhub/internal/app/routes"
	appServices "github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/config"
	"github.com/yigit/internhub/internal/db"
	appMiddleware "github.com/yigit/internhub/internal/middleware"
	pkgAuth "github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/email"
	"github.com/yigit/internhub/internal/pkg/filestorage"
	"github.com/yigit/internhub/internal/pkg/helpers"
	"github.com/yigit/internhub/internal/pkg/logger"
	"github.com/yigit/internhub/internal/pkg/validation"
	"github.com/yigit/internhub/internal/pkg/websocket"
	"github.com/yigit/internhub/internal/seed"
	"github.com/yigit/internhub/internal/workers"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	FileStorage  *filestorage.LocalStorage

	AuthService         appServices.AuthService
	UserService         appServices.UserService
	InternshipService   appServices.InternshipService
	ApplicationService  appServices.ApplicationService
	TaskService         appServices.TaskService
	FeedbackService     appServices.FeedbackService
	NotificationService appServices.NotificationService
	DashboardService    appServices.DashboardService
	ReminderService     appServices.ReminderService

	Handlers       appRoutes.Handlers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Limiter        appMiddleware.Limiter

	Hub        *websocket.Hub
	Dispatcher *email.Dispatcher
	Reminders  *workers.ReminderRunner // nil when reminders are disabled
	Redis      *redis.Client           // nil without a configured address

	Logger zerolog.Logger

	stopHub context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	admin := seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		FullName: cfg.Seed.AdminName,
	}
	if err := seed.CreateDefaultAdmin(ctx, appRepos.NewUserRepository(database.Pool), admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services, background workers and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	clock := appServices.Clock(time.Now)

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	fileStorageBaseURL := cfg.PublicBaseURL() + "/uploads" // must match the static route in server
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.UserRepository,
		deps.Repos.InternshipRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Live push and email delivery
	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	smtpCfg := email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if !cfg.SMTPEnabled() {
		lgr.Warn().Msg("SMTP not configured, notification emails will only be logged")
	}
	deps.Dispatcher = email.NewDispatcher(email.DispatcherConfig{
		Workers:     cfg.Notifications.EmailWorkers,
		QueueSize:   cfg.Notifications.EmailQueueSize,
		MaxAttempts: cfg.Notifications.EmailMaxAttempts,
		Backoff:     config.Duration(cfg.Notifications.EmailBackoff),
	}, email.NewSender(smtpCfg, lgr), deps.Repos.UserRepository, logger.Component("email"))

	// Services
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, clock, lgr)
	deps.NotificationService = appServices.NewNotificationService(
		deps.Repos.NotificationRepository,
		deps.Hub,
		deps.Dispatcher,
		appServices.NotificationConfig{AppURL: cfg.PublicBaseURL(), PageSize: cfg.Catalog.PageSize},
		clock,
		lgr,
	)
	deps.InternshipService = appServices.NewInternshipService(
		database,
		deps.Repos.InternshipRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		cfg.Catalog.PageSize,
		clock,
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		database,
		deps.Repos.ApplicationRepository,
		deps.Repos.InternshipRepository,
		deps.AuthzService,
		deps.NotificationService,
		deps.FileStorage,
		clock,
		lgr,
	)
	deps.TaskService = appServices.NewTaskService(
		database,
		deps.Repos.TaskRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.InternshipRepository,
		deps.AuthzService,
		deps.NotificationService,
		clock,
		lgr,
	)
	deps.FeedbackService = appServices.NewFeedbackService(
		database,
		deps.Repos.FeedbackRepository,
		deps.Repos.TaskRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.InternshipRepository,
		deps.AuthzService,
		deps.NotificationService,
		lgr,
	)
	deps.UserService = appServices.NewUserService(database, deps.Repos.UserRepository, deps.AuthzService, lgr)
	deps.DashboardService = appServices.NewDashboardService(deps.Repos.DashboardRepository, deps.AuthzService, clock)
	deps.ReminderService = appServices.NewReminderService(
		database,
		deps.Repos.TaskRepository,
		deps.NotificationService,
		appServices.ReminderWindow{MinDays: cfg.Reminders.WindowMin, MaxDays: cfg.Reminders.WindowMax},
		lgr,
	)

	if cfg.Reminders.Enabled {
		deps.Reminders, err = workers.NewReminderRunner(cfg.Reminders.Schedule, deps.ReminderService, lgr)
		if err != nil {
			return nil, err
		}
	}

	deps.Limiter = buildLimiter(cfg, deps, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Handlers = appRoutes.Handlers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.UserService),
		Internship:   appControllers.NewInternshipController(deps.InternshipService, lgr),
		Application:  appControllers.NewApplicationController(deps.ApplicationService, lgr),
		Task:         appControllers.NewTaskController(deps.TaskService, lgr),
		Feedback:     appControllers.NewFeedbackController(deps.FeedbackService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
		Dashboard:    appControllers.NewDashboardController(deps.DashboardService),
		Health:       appControllers.NewHealthController(database.Pool),
		WebSocket:    websocket.NewHandler(deps.Hub, logger.Component("websocket")),
	}

	return deps, nil
}

// buildLimiter prefers a shared redis counter and falls back to process memory.
func buildLimiter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) appMiddleware.Limiter {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, using in-memory rate limiter")
		return appMiddleware.NewMemoryLimiter()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, using in-memory rate limiter")
		_ = client.Close()
		return appMiddleware.NewMemoryLimiter()
	}

	deps.Redis = client
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Rate limiter backed by redis")
	return appMiddleware.NewRedisLimiter(client, logger.Component("ratelimit"))
}

// Start launches the background workers. Cancelling ctx stops the hub.
func (d *Dependencies) Start(ctx context.Context) {
	hubCtx, cancel := context.WithCancel(ctx)
	d.stopHub = cancel
	go d.Hub.Run(hubCtx)

	d.Dispatcher.Start()
	if d.Reminders != nil {
		d.Reminders.Start()
	}
}

// Stop drains the background workers and releases external clients.
func (d *Dependencies) Stop(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if d.Reminders != nil {
		keep(d.Reminders.Stop(ctx))
	}
	if d.stopHub != nil {
		d.stopHub()
	}
	keep(d.Dispatcher.Stop(ctx))
	if d.Redis != nil {
		keep(d.Redis.Close())
	}
	return firstErr
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))
	router.MaxMultipartMemory = 8 << 20

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, appRoutes.LoginLimit{
		Limiter: deps.Limiter,
		Limit:   cfg.RateLimit.LoginLimit,
		Window:  config.Duration(cfg.RateLimit.LoginWindow),
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
