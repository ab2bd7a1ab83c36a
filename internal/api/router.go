package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	v1 "github.com/courselane/courselane/internal/api/v1"
	"github.com/courselane/courselane/internal/config"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/rest/middleware"
)

// Handlers bundles every v1 handler the router mounts
type Handlers struct {
	Grant        *v1.GrantHandler
	Entitlement  *v1.EntitlementHandler
	Progress     *v1.ProgressHandler
	Customer     *v1.CustomerHandler
	Plan         *v1.PlanHandler
	Subscription *v1.SubscriptionHandler
	Bundle       *v1.BundleHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(),
	)

	router.GET("/health", v1.Health)

	api := router.Group("/v1")
	{
		grants := api.Group("/grants")
		{
			grants.POST("/purchase", handlers.Grant.RecordPurchase)
			grants.POST("/subscription", handlers.Grant.RecordSubscription)
			grants.POST("/admin", handlers.Grant.RecordAdmin)
			grants.POST("/:id/refund", handlers.Grant.RecordRefund)
			grants.GET("/:id", handlers.Grant.GetGrant)
			grants.GET("", handlers.Grant.ListGrants)
		}

		api.POST("/access/resolve", handlers.Entitlement.Resolve)

		progress := api.Group("/progress")
		{
			progress.POST("/completions", handlers.Progress.RecordCompletion)
			progress.GET("/users/:user_id/courses/:course_id", handlers.Progress.CourseProgress)
			progress.GET("/users/:user_id/courses/:course_id/modules/:module_id", handlers.Progress.ModuleProgress)
			progress.GET("/users/:user_id/courses/:course_id/lessons/:lesson_id", handlers.Progress.LessonProgress)
			progress.GET("/users/:user_id/courses/:course_id/last-accessed", handlers.Progress.LastAccessed)
		}

		customers := api.Group("/customers")
		{
			customers.GET("/lookup", handlers.Customer.GetByEmail)
			customers.GET("/:id", handlers.Customer.GetCustomer)
			customers.GET("", handlers.Customer.ListCustomers)
		}

		plans := api.Group("/plans")
		{
			plans.POST("", handlers.Plan.CreatePlan)
			plans.GET("", handlers.Plan.ListPlans)
			plans.GET("/:id", handlers.Plan.GetPlan)
			plans.PUT("/:id", handlers.Plan.UpdatePlan)
			plans.POST("/:id/archive", handlers.Plan.ArchivePlan)
		}

		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.POST("", handlers.Subscription.CreateSubscription)
			subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
			subscriptions.POST("/:id/state", handlers.Subscription.UpdateState)
		}

		bundles := api.Group("/bundles")
		{
			bundles.POST("", handlers.Bundle.CreateBundle)
			bundles.GET("/:id", handlers.Bundle.GetBundle)
		}
	}

	return router
}
