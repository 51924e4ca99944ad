package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/audit"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/config"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/events"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/handlers"
	infraRepo "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/infra/repository"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/middleware"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/models"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/notify"
	ucQueue "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/usecase/queue"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/ws"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *goredis.Client, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	queueRepo := infraRepo.NewQueueGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	notifier := notify.New(db)

	hub := ws.NewHub()
	go hub.Run()

	relay := events.NewRedisRelay(rdb, hub)
	relay.Run(context.Background())

	broadcaster := events.NewBroadcaster(hub, relay)

	guard := ucQueue.NewGuard()

	// ======================================================
	// USE CASES - QUEUE
	// ======================================================
	joinUC := ucQueue.NewJoin(queueRepo, guard, broadcaster, auditDispatcher)
	startUC := ucQueue.NewStart(queueRepo, guard, broadcaster, auditDispatcher, notifier)
	completeUC := ucQueue.NewComplete(queueRepo, guard, broadcaster, auditDispatcher, notifier)
	cancelUC := ucQueue.NewCancel(queueRepo, guard, broadcaster, auditDispatcher)
	snapshotUC := ucQueue.NewSnapshot(queueRepo)
	prescribeUC := ucQueue.NewPrescribe(queueRepo, auditDispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	queueHandler := handlers.NewQueueHandler(
		joinUC,
		startUC,
		completeUC,
		cancelUC,
		snapshotUC,
		prescribeUC,
	)
	wsHandler := handlers.NewWSHandler(hub)
	notificationHandler := handlers.NewNotificationHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/ws", wsHandler.Subscribe)

			// ------------------------------
			// QUEUE
			// ------------------------------
			secured.GET("/queue", queueHandler.Fetch)
			secured.POST("/queue/join", queueHandler.Join)
			secured.PATCH("/queue/:id/cancel", queueHandler.Cancel)

			gurujiOnly := secured.Group("/")
			gurujiOnly.Use(middleware.RoleRequired(models.RoleGuruji))
			{
				gurujiOnly.PATCH("/queue/:id/start", queueHandler.Start)
				gurujiOnly.PATCH("/queue/:id/complete", queueHandler.Complete)
				gurujiOnly.POST("/remedies", queueHandler.Prescribe)
			}

			secured.GET("/me/notifications", notificationHandler.List)
			secured.PATCH("/me/notifications/:id/read", notificationHandler.MarkRead)

			adminOnly := secured.Group("/")
			adminOnly.Use(middleware.RoleRequired(models.RoleAdmin))
			{
				adminOnly.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
