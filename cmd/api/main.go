package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jackma2003/edubridge-api/internal/config"
	"github.com/jackma2003/edubridge-api/internal/database"
	"github.com/jackma2003/edubridge-api/internal/handler"
	"github.com/jackma2003/edubridge-api/internal/middleware"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/observability"
	"github.com/jackma2003/edubridge-api/internal/repository"
	"github.com/jackma2003/edubridge-api/internal/router"
	"github.com/jackma2003/edubridge-api/internal/service"
	cloud "github.com/jackma2003/edubridge-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.TeacherProfile{},
		&models.Course{},
		&models.Module{},
		&models.ContentItem{},
		&models.Enrollment{},
		&models.Rating{},
		&models.Progress{},
		&models.CompletedContent{},
		&models.LearningGoal{},
		&models.StudySession{},
		&models.ActivityLog{},
		&models.UploadRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, dashboard caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, domain events disabled")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewTeacherProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	events := service.NewEventPublisher(natsConn, "edubridge", logger)

	authService := service.NewAuthService(userRepo, profileRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, events, logger)
	progressService := service.NewProgressService(progressRepo, enrollmentRepo, courseRepo, events, logger)
	dashboardService := service.NewDashboardService(enrollmentRepo, progressRepo, redisClient, cfg.DashboardCacheTTL, logger)
	plannerService := service.NewPlannerService(goalRepo, sessionRepo, validate, logger)
	adminService := service.NewAdminService(userRepo, profileRepo, activityRepo, events, validate, logger)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		ClientURL: cfg.ClientURL,
	})

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     handler.NewAuthHandler(authService, logger),
		UserHandler:     handler.NewUserHandler(userService, dashboardService, logger),
		CourseHandler:   handler.NewCourseHandler(courseService, enrollmentService, dashboardService, logger),
		ProgressHandler: handler.NewProgressHandler(progressService, dashboardService, logger),
		PlannerHandler:  handler.NewPlannerHandler(plannerService, logger),
		UploadHandler:   handler.NewUploadHandler(uploadService, logger),
		AdminHandler:    handler.NewAdminHandler(adminService, logger),
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("server started")

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
