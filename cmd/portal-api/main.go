package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-sis-api/api/swagger"
	"github.com/noah-isme/campus-sis-api/internal/handler"
	"github.com/noah-isme/campus-sis-api/internal/middleware"
	"github.com/noah-isme/campus-sis-api/internal/models"
	"github.com/noah-isme/campus-sis-api/internal/repository"
	"github.com/noah-isme/campus-sis-api/internal/service"
	"github.com/noah-isme/campus-sis-api/pkg/cache"
	"github.com/noah-isme/campus-sis-api/pkg/config"
	"github.com/noah-isme/campus-sis-api/pkg/database"
	"github.com/noah-isme/campus-sis-api/pkg/identity"
	"github.com/noah-isme/campus-sis-api/pkg/jobs"
	"github.com/noah-isme/campus-sis-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-sis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-sis-api/pkg/middleware/requestid"
)

// @title Campus SIS API
// @version 1.0.0
// @description Student information portal: registration, grades, curriculum offerings and campus content
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, summary caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.SummaryTTL, logr, true)
		}
	}

	// repositories
	studentRepo := repository.NewStudentRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	termRepo := repository.NewTermRepository(db)
	checklistRepo := repository.NewCurriculumRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	eventRepo := repository.NewEventRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)

	// services
	provider := identity.NewClient(cfg.Identity, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		SessionSecret: cfg.Session.Secret,
		Issuer:        cfg.Session.Issuer,
		Audience:      cfg.Session.Audience,
	})
	studentSvc := service.NewStudentService(studentRepo, provider, nil, logr)
	staffSvc := service.NewStaffService(staffRepo, provider, nil, logr)
	gradeSvc := service.NewGradeService(gradeRepo, termRepo, cacheSvc, nil, logr)
	termSvc := service.NewTermService(termRepo, nil, logr)
	checklistSvc := service.NewChecklistService(checklistRepo, nil, logr)
	offeringSvc := service.NewOfferingService(checklistRepo, offeringRepo, nil, logr)
	contentSvc := service.NewContentService(announcementRepo, eventRepo, newsRepo, nil, logr)
	importSvc := service.NewImportService(gradeSvc, studentSvc, studentRepo, logr)
	transcriptSvc := service.NewTranscriptService(gradeSvc, logr)
	limiter := service.NewRateLimitService(rateLimitRepo, cfg.RateLimit.Window, cfg.RateLimit.Threshold, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(studentRepo, announcementRepo, eventRepo, cfg.Weather, metricsSvc, logr)

	// handlers
	studentHandler := handler.NewStudentHandler(studentSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc, studentSvc, importSvc, transcriptSvc)
	importHandler := handler.NewImportHandler(importSvc, transcriptSvc)
	offeringHandler := handler.NewOfferingHandler(offeringSvc)
	checklistHandler := handler.NewChecklistHandler(checklistSvc)
	termHandler := handler.NewTermHandler(termSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	cronHandler := handler.NewCronHandler(limiter, cfg.Cron.Secret)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	accessTable, err := middleware.NewAccessTable(middleware.DefaultAccessRules(cfg.APIPrefix))
	if err != nil {
		logr.Sugar().Fatalw("invalid access table", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// public: self-service registration only
	api.POST("/students/register", studentHandler.Register)

	// cron: bearer-secret gated maintenance
	cron := api.Group("/cron", cronHandler.Authorize)
	cron.POST("/rate-limits/cleanup", cronHandler.CleanupRateLimits)

	// the approval status check sits behind JWT only: the pending-approval
	// page has to reach it before the access gate lets the student anywhere else
	api.GET("/me/approval", middleware.JWT(authSvc), studentHandler.MyApprovalStatus)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.Use(middleware.Access(accessTable, studentSvc))

	authed.GET("/dashboard", dashboardHandler.Stats)

	students := authed.Group("/students")
	{
		students.GET("", studentHandler.List)
		students.POST("", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar), studentHandler.Create)
		students.POST("/bulk-delete", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin), studentHandler.BulkDelete)
		students.POST("/upload", importHandler.UploadStudents)
		students.GET("/template", importHandler.StudentTemplate)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", middleware.RBAC("SUPERUSER", "ADMIN", "REGISTRAR", "SELF"), studentHandler.Update)
		students.DELETE("/:id", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin), studentHandler.Delete)
		students.PATCH("/:id/approval", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar), studentHandler.SetApproval)
		students.GET("/:id/approval", studentHandler.ApprovalStatus)
		students.PUT("/:id/password", middleware.RBAC("SUPERUSER", "ADMIN", "SELF"), studentHandler.SetPassword)
		students.GET("/:id/grades/summary", middleware.RateLimit(limiter, "grade-summary"), gradeHandler.Summary)
		students.GET("/:id/transcript", gradeHandler.Transcript)
	}

	grades := authed.Group("/grades")
	{
		grades.GET("", middleware.RateLimit(limiter, "grade-list"), gradeHandler.List)
		grades.POST("", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar, models.RoleFaculty), gradeHandler.Create)
		grades.POST("/upload", gradeHandler.Upload)
		grades.GET("/template", gradeHandler.Template)
	}

	offerings := authed.Group("/offerings")
	{
		offerings.GET("", offeringHandler.List)
		offerings.POST("/seed", offeringHandler.Seed)
		offerings.PATCH("/:id/active", offeringHandler.SetActive)
	}

	checklists := authed.Group("/checklists")
	{
		checklists.GET("", checklistHandler.List)
		checklists.GET("/:id", checklistHandler.Get)
		checklists.POST("", checklistHandler.Create)
		checklists.PUT("/:id", checklistHandler.Update)
		checklists.DELETE("/:id", checklistHandler.Delete)
	}

	terms := authed.Group("/terms")
	{
		terms.GET("", termHandler.List)
		terms.GET("/active", termHandler.Active)
		terms.POST("", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar), termHandler.Create)
		terms.PATCH("/:id/activate", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin, models.RoleRegistrar), termHandler.Activate)
		terms.DELETE("/:id", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin), termHandler.Delete)
	}

	adminContent := middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin)
	content := authed.Group("")
	{
		content.GET("/announcements", contentHandler.ListAnnouncements)
		content.POST("/announcements", adminContent, contentHandler.CreateAnnouncement)
		content.PUT("/announcements/:id", adminContent, contentHandler.UpdateAnnouncement)
		content.DELETE("/announcements/:id", adminContent, contentHandler.DeleteAnnouncement)
		content.GET("/events", contentHandler.ListEvents)
		content.POST("/events", adminContent, contentHandler.CreateEvent)
		content.PUT("/events/:id", adminContent, contentHandler.UpdateEvent)
		content.DELETE("/events/:id", adminContent, contentHandler.DeleteEvent)
		content.GET("/news", contentHandler.ListNews)
		content.POST("/news", adminContent, contentHandler.CreateNews)
		content.PUT("/news/:id", adminContent, contentHandler.UpdateNews)
		content.DELETE("/news/:id", adminContent, contentHandler.DeleteNews)
	}

	staff := authed.Group("/staff", middleware.RequireRoles(models.RoleSuperUser, models.RoleAdmin))
	{
		staff.GET("", staffHandler.List)
		staff.GET("/:id", staffHandler.Get)
		staff.POST("", staffHandler.Create)
		staff.PUT("/:id", staffHandler.Update)
		staff.DELETE("/:id", staffHandler.Delete)
	}

	scheduler := jobs.NewScheduler(logr)
	scheduler.Register("rate-limit-prune", cfg.RateLimit.PruneInterval, func(ctx context.Context) error {
		_, err := limiter.Cleanup(ctx)
		return err
	})
	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()
	scheduler.Start(schedCtx)
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
