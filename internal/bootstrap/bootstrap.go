package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/roster/internal/app/controllers"
	appMigrations "github.com/yigit/roster/internal/app/migrations"
	appRepos "github.com/yigit/roster/internal/app/repositories"
	"github.com/yigit/roster/internal/app/rollover"
	appRoutes "github.com/yigit/roster/internal/app/routes"
	appServices "github.com/yigit/roster/internal/app/services"
	"github.com/yigit/roster/internal/cache"
	"github.com/yigit/roster/internal/config"
	"github.com/yigit/roster/internal/db"
	appMiddleware "github.com/yigit/roster/internal/middleware"
	pkgAuth "github.com/yigit/roster/internal/pkg/auth"
	"github.com/yigit/roster/internal/pkg/filestorage"
	"github.com/yigit/roster/internal/pkg/helpers"
	"github.com/yigit/roster/internal/pkg/logger"
	"github.com/yigit/roster/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos             *appRepos.Repositories
	Redis             *redis.Client // nil when Redis is not configured
	JWTService        *pkgAuth.JWTService
	FileStorage       *filestorage.LocalStorage
	AuthService       *appServices.AuthService
	AttachmentService *appServices.AttachmentService
	StudentService    *appServices.StudentService
	StudentExporter   *appServices.StudentExporter
	AuthController    *appControllers.AuthController
	StudentController *appControllers.StudentController
	HealthController  *appControllers.HealthController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	RolloverEngine    *rollover.Engine
	Logger            zerolog.Logger
}

// Close releases the connections owned by the dependencies
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the operator account.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	admin := seed.AdminAccount{Username: cfg.Seed.AdminUsername, Password: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultData(ctx, appRepos.NewAccountRepository(database.Pool), admin, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var guard rollover.Guard = rollover.NewMemoryGuard()
	if cfg.RedisEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to redis")
			return nil, err
		}
		deps.Redis = client
		deps.Repos.WithStudentCache(client, helpers.ParseDuration(cfg.Redis.CacheTTL, 10*time.Minute))
		guard = rollover.NewRedisGuard(client)
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache and rollover guard enabled")
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		deps.Close()
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.AccountRepository, deps.JWTService, logger.Component("auth"))
	deps.AttachmentService = appServices.NewAttachmentService(deps.FileStorage, logger.Component("attachments"))
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.AttachmentService, logger.Component("students"))
	deps.StudentExporter = appServices.NewStudentExporter(deps.Repos.StudentRepository, logger.Component("export"))

	deps.RolloverEngine = rollover.NewEngine(deps.Repos.StudentRepository, guard, rollover.Config{
		Month:    time.Month(cfg.Rollover.Month),
		Interval: helpers.ParseDuration(cfg.Rollover.CheckInterval, 24*time.Hour),
		Location: cfg.RolloverLocation(),
	}, logger.Component("rollover"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.StudentController = appControllers.NewStudentController(
		deps.StudentService,
		deps.StudentExporter,
		maxUploadBytes(cfg),
		lgr,
	)
	deps.HealthController = appControllers.NewHealthController(dbPool)

	return deps, nil
}

func maxUploadBytes(cfg *config.Config) int64 {
	mb := cfg.Server.MaxUploadMB
	if mb <= 0 {
		mb = 32
	}
	return int64(mb * (1 << 20))
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.CORS())
	router.MaxMultipartMemory = maxUploadBytes(cfg)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.HealthController,
		deps.AuthMiddleware,
	)

	return router
}
