package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/notifeed/notifeed/internal/gateway"
	"github.com/notifeed/notifeed/internal/gateway/middleware"
	"github.com/notifeed/notifeed/internal/mailer"
	"github.com/notifeed/notifeed/internal/modules/auth"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate"
	"github.com/notifeed/notifeed/internal/modules/gdpr"
	gdprs3 "github.com/notifeed/notifeed/internal/modules/gdpr/infrastructure/s3"
	"github.com/notifeed/notifeed/internal/modules/notification"
	"github.com/notifeed/notifeed/internal/modules/security"
	"github.com/notifeed/notifeed/internal/modules/tenant"
	"github.com/notifeed/notifeed/internal/modules/theme"
	"github.com/notifeed/notifeed/internal/shared/infrastructure/config"
	"github.com/notifeed/notifeed/internal/shared/infrastructure/database"
	"github.com/notifeed/notifeed/internal/shared/logger"
	"github.com/notifeed/notifeed/internal/worker"
	"github.com/notifeed/notifeed/pkg/migration"
)

func main() {
	log := logger.New("main")

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to postgres")
	}
	defer db.Close()
	log.Info("Database connected")

	if err := migration.AutoMigrate(cfg.Database.URL(), "migrations", logger.New("migration")); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("Redis connected")

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	distributor := worker.NewTaskDistributor(redisOpt)
	defer distributor.Close()

	securityModule := security.NewModule(redisClient, cfg.JWT.Expiry)
	authModule := auth.NewModule(db, securityModule.Store(), cfg.JWT.Secret, cfg.JWT.Expiry, cfg.Google.ClientID)
	notificationModule := notification.NewModule(db, redisClient, worker.NewDigestEnqueuer(distributor))
	defer notificationModule.Shutdown()
	tenantModule := tenant.NewModule(db)
	templateModule := emailtemplate.NewModule(db)
	themeModule := theme.NewModule(db)

	objectStore, err := gdprs3.NewObjectStore(context.Background(), gdprs3.Config{
		BucketName:     cfg.Export.S3Bucket,
		Region:         cfg.Export.S3Region,
		Endpoint:       cfg.Export.S3Endpoint,
		PublicEndpoint: cfg.Export.S3PublicEndpoint,
		AccessKey:      cfg.Export.S3AccessKey,
		SecretKey:      cfg.Export.S3SecretKey,
		UseSSL:         cfg.Export.S3UseSSL,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize export object store")
	}

	gdprModule := gdpr.NewModule(db, objectStore, worker.NewGdprEnqueuer(distributor), cfg.Export.URLExpiry)

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
		FromAddr: cfg.SMTP.From,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize mail sender")
	}

	processor := worker.NewRedisTaskProcessor(
		redisOpt,
		gdprModule.ExportRepository(),
		objectStore,
		authModule.UserRepository(),
		notificationModule.Repository(),
		templateModule.Repository(),
		sender,
	)
	go func() {
		if err := processor.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start task processor")
		}
	}()
	defer processor.Shutdown()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, securityModule.Store())

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authMiddleware,
		NotificationHandler: notificationModule.HTTPHandler(),
		TenantHandler:       tenantModule.HTTPHandler(),
		TemplateHandler:     templateModule.HTTPHandler(),
		ThemeHandler:        themeModule.HTTPHandler(),
		SessionHandler:      securityModule.HTTPHandler(),
		GdprHandler:         gdprModule.HTTPHandler(),
	})

	handler := middleware.PrometheusMiddleware(
		middleware.CORSMiddleware(mux, cfg.Server.AllowedOrigins))

	server := gateway.NewServer(cfg.Server.Port, handler)
	if err := server.Start(); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}
