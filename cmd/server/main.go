package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/config"
	crmentity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	crmhandler "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/handler"
	crmrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	crmsvc "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/middleware"
	rementity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/entity"
	remhandler "github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/handler"
	remrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/repository"
	remsvc "github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/service"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/shared/sms"
	userentity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/entity"
	userhandler "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/handler"
	userrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	usersvc "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting vst-crm service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&userentity.User{},
		&crmentity.Card{},
		&crmentity.Service{},
		&crmentity.ServiceEntry{},
		&crmentity.JobCard{},
		&crmentity.Feedback{},
		&crmentity.Attendance{},
		&crmentity.AuditLog{},
		&crmentity.IndustrialAMC{},
		&rementity.AdminReminder{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	smsClient := sms.NewClient(
		cfg.SMS.GatewayURL,
		cfg.SMS.LicenseNumber,
		cfg.SMS.APIKey,
		cfg.SMS.AdminPhone,
		cfg.CRM.DevSMSEcho,
		zapLogger,
	)

	// wiring
	userRepo := userrepo.NewUserRepository(db)
	crmRepos := crmrepo.NewRepositories(db)
	reminderRepo := remrepo.NewReminderRepository(db)

	userService := usersvc.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
	crmServices := crmsvc.NewServices(crmRepos, userRepo, smsClient, &cfg.CRM, zapLogger)
	reminderService := remsvc.NewReminderService(reminderRepo)

	if cfg.MinIO.Endpoint != "" {
		minioClient, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Fatal("Failed to init object store", zap.Error(err))
		}
		crmServices.JobCard.SetObjectStore(minioClient, cfg.MinIO.Bucket)
	}

	crmHandlers := crmhandler.NewHandlers(crmServices, cfg.CRM.DevReturnOTP)
	userHandler := userhandler.NewUserHandler(userService)
	reminderHandler := remhandler.NewReminderHandler(reminderService)

	// background reminder sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := remsvc.NewSweeper(reminderRepo, rdb, smsClient, zapLogger, 0)
	go sweeper.Run(sweepCtx)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, cfg, crmHandlers, userHandler, reminderHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h *crmhandler.Handlers, uh *userhandler.UserHandler, rh *remhandler.ReminderHandler) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")

	// no auth
	auth := v1.Group("/auth")
	{
		auth.POST("/register", uh.Register)
		auth.POST("/login", uh.Login)
		auth.POST("/refresh", uh.Refresh)
	}

	// authenticated
	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		users := authed.Group("/users")
		{
			users.GET("/me", uh.Me)
			users.PUT("/me", uh.UpdateMe)
			users.POST("/me/password", uh.ChangePassword)

			admin := users.Group("")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.GET("", uh.ListUsers)
				admin.POST("", uh.AdminCreateUser)
				admin.PUT("/:id", uh.AdminUpdateUser)
				admin.GET("/workers/available", uh.AvailableWorkers)
			}
		}

		crm := authed.Group("/crm")
		{
			cards := crm.Group("/cards")
			{
				cards.GET("", h.Card.ListCards)
				cards.GET("/:id", h.Card.GetCard)
				cards.POST("", h.Card.CreateCard)
				cards.PUT("/:id", middleware.RequireRole("admin"), h.Card.UpdateCard)
				cards.DELETE("/:id", middleware.RequireRole("admin"), h.Card.DeleteCard)
			}

			services := crm.Group("/services")
			{
				services.GET("", h.Service.ListServices)
				services.GET("/:id", h.Service.GetService)
				services.POST("", h.Service.CreateService)
				services.POST("/admin", middleware.RequireRole("admin"), h.Service.AdminCreateService)
				services.POST("/:id/assign", middleware.RequireRole("admin"), h.Service.AssignService)
				services.POST("/:id/reschedule", h.Service.RescheduleService)
				services.POST("/:id/cancel", h.Service.CancelService)
				services.POST("/:id/start", middleware.RequireRole("worker"), h.Service.StartService)
				services.POST("/:id/request-otp", middleware.RequireRole("worker"), h.Service.RequestOTP)
				services.POST("/:id/verify-otp", middleware.RequireRole("worker"), h.Service.VerifyOTP)
				services.GET("/:id/entries", h.Service.ListEntries)
			}

			jobcards := crm.Group("/jobcards")
			{
				jobcards.GET("", h.JobCard.ListJobCards)
				jobcards.GET("/:id", h.JobCard.GetJobCard)
				jobcards.PUT("/:id", middleware.RequireRole("admin"), h.JobCard.UpdateJobCard)
				jobcards.POST("/:id/advance", middleware.RequireRole("admin"), h.JobCard.AdvanceJobCard)
				jobcards.POST("/:id/photo", middleware.RequireRole("worker"), h.JobCard.UploadPhoto)
				jobcards.POST("/:id/request-reinstall-otp", middleware.RequireRole("worker"), h.JobCard.RequestReinstallOTP)
				jobcards.POST("/:id/verify-reinstall", middleware.RequireRole("worker"), h.JobCard.VerifyReinstall)
			}

			reports := crm.Group("/reports")
			reports.Use(middleware.RequireRole("admin"))
			{
				reports.GET("/warranty", h.Report.WarrantyReport)
				reports.GET("/warranty/csv", h.Report.WarrantyReportCSV)
				reports.GET("/warranty/xlsx", h.Report.WarrantyReportXLSX)
				reports.GET("/cards/:id", h.Report.CardReport)
				reports.GET("/upcoming", h.Report.UpcomingServices)
			}

			attendance := crm.Group("/attendance")
			{
				attendance.POST("", middleware.RequireRole("worker"), h.Attendance.MarkAttendance)
				attendance.GET("/today", middleware.RequireRole("admin"), h.Attendance.TodayAttendance)
				attendance.GET("/history", middleware.RequireRole("worker"), h.Attendance.AttendanceHistory)
			}

			feedback := crm.Group("/feedback")
			{
				feedback.POST("", h.Feedback.CreateFeedback)
				feedback.GET("", middleware.RequireRole("admin"), h.Feedback.ListFeedback)
			}

			amc := crm.Group("/amc")
			amc.Use(middleware.RequireRole("admin"))
			{
				amc.POST("", h.AMC.CreateAMC)
				amc.GET("", h.AMC.ListAMCByCard)
				amc.DELETE("/:id", h.AMC.DeleteAMC)
			}
		}

		reminders := authed.Group("/reminders")
		reminders.Use(middleware.RequireRole("admin"))
		{
			reminders.GET("", rh.ListReminders)
			reminders.GET("/:id", rh.GetReminder)
			reminders.POST("", rh.CreateReminder)
			reminders.PUT("/:id", rh.UpdateReminder)
			reminders.DELETE("/:id", rh.DeleteReminder)
		}
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
