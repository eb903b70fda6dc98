package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/peers/internal/app/auth"
	appControllers "github.com/yigit/peers/internal/app/controllers"
	appMigrations "github.com/yigit/peers/internal/app/migrations"
	appRepos "github.com/yigit/peers/internal/app/repositories"
	appRoutes "github.com/yigit/peers/internal/app/routes"
	appServices "github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/config"
	"github.com/yigit/peers/internal/db"
	appMiddleware "github.com/yigit/peers/internal/middleware"
	pkgAuth "github.com/yigit/peers/internal/pkg/auth"
	"github.com/yigit/peers/internal/pkg/callprovider"
	"github.com/yigit/peers/internal/pkg/email"
	"github.com/yigit/peers/internal/pkg/eventtime"
	"github.com/yigit/peers/internal/pkg/filestorage"
	"github.com/yigit/peers/internal/pkg/logger"
	"github.com/yigit/peers/internal/pkg/websocket"
	"github.com/yigit/peers/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	FileStorage  *filestorage.LocalStorage
	CallHub      *websocket.Hub

	UserService         appServices.UserService
	CatalogService      appServices.CatalogService
	VerificationService appServices.VerificationService
	EventService        appServices.EventService
	OrganizationService appServices.OrganizationService
	FeedService         appServices.FeedService
	SearchService       appServices.SearchService
	CallService         appServices.CallService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the reference data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(context.Background(), cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database, lgr)
	if err := migrator.Migrate(ctx, os.DirFS(migrationsDir)); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, appRepos.NewRepositories(database), lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	clock := eventtime.SystemClock{}

	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.BaseURL()+"/uploads", lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.Users, deps.Repos.Organizations)

	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, lgr)
	rooms := callprovider.NewClient(callprovider.Config{
		BaseURL: cfg.CallProvider.BaseURL,
		APIKey:  cfg.CallProvider.APIKey,
		Timeout: cfg.CallProvider.Timeout,
	}, lgr)

	deps.UserService = appServices.NewUserService(deps.Repos.Users, deps.Repos.Tags, lgr)
	deps.CatalogService = appServices.NewCatalogService(deps.Repos.Tags, deps.Repos.Universities)
	deps.VerificationService = appServices.NewVerificationService(
		deps.Repos.Verifications,
		deps.Repos.Universities,
		deps.Repos.Users,
		sender,
		clock,
		cfg.Verification.CodeTTL,
		lgr,
	)
	deps.EventService = appServices.NewEventService(
		deps.Repos.Events,
		deps.Repos.Tags,
		deps.AuthzService,
		deps.FileStorage,
		clock,
		lgr,
	)
	deps.OrganizationService = appServices.NewOrganizationService(
		deps.Repos.Organizations,
		deps.Repos.Users,
		deps.AuthzService,
		lgr,
	)
	deps.FeedService = appServices.NewFeedService(deps.Repos.Events, deps.Repos.Users, deps.Repos.Organizations, clock, lgr)
	deps.SearchService = appServices.NewSearchService(deps.Repos.Events, deps.Repos.Organizations, deps.Repos.Users, clock, lgr)
	deps.CallService = appServices.NewCallService(
		deps.Repos.Events,
		deps.Repos.CallSessions,
		deps.AuthzService,
		rooms,
		clock,
		lgr,
	)

	// The hub hands finished sessions back to the call service for points
	deps.CallHub = websocket.NewHub(deps.CallService, clock, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.UserService)

	deps.Controllers = appRoutes.Controllers{
		Public:       appControllers.NewPublicController(deps.CatalogService, database.Pool),
		User:         appControllers.NewUserController(deps.UserService, deps.EventService),
		Verification: appControllers.NewVerificationController(deps.VerificationService),
		Event:        appControllers.NewEventController(deps.EventService),
		Organization: appControllers.NewOrganizationController(deps.OrganizationService, deps.EventService),
		Feed:         appControllers.NewFeedController(deps.FeedService, cfg.Feed.HostLimit),
		Search:       appControllers.NewSearchController(deps.SearchService),
		Call: appControllers.NewCallController(
			deps.CallService,
			deps.CallHub,
			websocket.NewUpgrader(socketOrigins(cfg.Server.CORSOrigins)),
			lgr,
		),
	}

	return deps, nil
}

// socketOrigins returns nil, meaning any origin, when CORS is open
func socketOrigins(origins []string) []string {
	if slices.Contains(origins, "*") {
		return nil
	}
	return origins
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.CORS(cfg.Server.CORSOrigins))

	// Multipart forms above this spill to disk
	router.MaxMultipartMemory = 8 << 20

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
