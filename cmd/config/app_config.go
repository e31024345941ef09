package config

import (
	"context"
	"os"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/handlers"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/routes"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/middleware"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/cache"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/mailing"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/storage"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/analysis"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/content"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/group"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/harvest"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/jwt"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/notification"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/proposal"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/user"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// NewApp wires every component on top of db. The returned cleanup stops the
// push dispatcher and releases the Redis connection.
func NewApp(db *gorm.DB) (*fiber.App, func(), error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         12 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "America/Sao_Paulo",
		Output:     file,
	}))

	prometheus := fiberprometheus.New("cultivodobem")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	redis := cache.NewRedisStorage("cultivodobem:")
	var limiterStorage, cmsCache fiber.Storage
	if redis != nil {
		if err := redis.Ping(context.Background()); err != nil {
			logging.LogError("redis_ping", err, nil)
		}
		limiterStorage = redis.WithPrefix("cultivodobem:limiter:")
		cmsCache = redis.WithPrefix("cultivodobem:cms:")
	}
	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
		Storage:    limiterStorage,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics"
		},
	}))

	// utils
	s3 := storage.NewAwsS3()
	mailer := mailing.NewMailer()

	// Repository
	userRepository := user.NewUserRepository(db)
	groupRepository := group.NewGroupRepository(db)
	harvestRepository := harvest.NewHarvestRepository(db)
	analysisRepository := analysis.NewAnalysisRepository(db)
	proposalRepository := proposal.NewProposalRepository(db)
	notificationRepository := notification.NewNotificationRepository(db)
	contentRepository := content.NewContentRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService, s3, mailer)
	groupService := group.NewGroupService(groupRepository, userRepository)
	harvestService := harvest.NewHarvestService(harvestRepository)
	analysisService := analysis.NewAnalysisService(
		analysisRepository,
		analysis.NewGeminiClassifier(analysis.LoadGeminiConfig()),
		s3,
	)
	proposalService := proposal.NewProposalService(proposalRepository, groupRepository, userRepository)
	notificationService := notification.NewNotificationService(notificationRepository)
	contentService := content.NewContentService(
		contentRepository,
		userRepository,
		content.NewCMSClient(content.LoadCMSConfig(), cmsCache),
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	groupHandler := handlers.NewGroupHandler(groupService, validator)
	harvestHandler := handlers.NewHarvestHandler(harvestService, validator)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	proposalHandler := handlers.NewProposalHandler(proposalService, validator)
	notificationHandler := handlers.NewNotificationHandler(notificationService, validator)
	contentHandler := handlers.NewContentHandler(contentService, validator)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		UserHandler:         userHandler,
		GroupHandler:        groupHandler,
		HarvestHandler:      harvestHandler,
		AnalysisHandler:     analysisHandler,
		ProposalHandler:     proposalHandler,
		NotificationHandler: notificationHandler,
		ContentHandler:      contentHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()

	// push delivery
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	if vapid := notification.LoadVAPIDConfig(); vapid.Enabled() {
		dispatcher := notification.NewDispatcher(notificationRepository, notification.NewWebPushSender(vapid))
		go func() {
			defer close(done)
			dispatcher.Start(ctx)
		}()
	} else {
		logging.LogEvent("push_dispatcher_disabled", map[string]interface{}{"reason": "VAPID keys not configured"})
		close(done)
	}

	cleanup := func() {
		cancel()
		<-done
		if redis != nil {
			_ = redis.Close()
		}
		_ = file.Close()
	}
	return app, cleanup, nil
}
