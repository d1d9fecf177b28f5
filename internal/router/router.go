package router

import (
	"database/sql"
	"strings"
	"time"

	"github.com/harimoradiya/rmspos/internal/handlers"
	"github.com/harimoradiya/rmspos/internal/middleware"
	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/repositories"
	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and returns the HTTP
// engine. The hub is injected so its lifetime is owned by main.
func Setup(db *sql.DB, hub *notifications.Hub) *gin.Engine {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	outletRepo := repositories.NewOutletRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	menuRepo := repositories.NewMenuRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	billingRepo := repositories.NewBillingRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)

	// Services
	accessService := services.NewAccessService(outletRepo)
	authService := services.NewAuthService(userRepo, outletRepo, db)
	outletService := services.NewOutletService(outletRepo, db)
	tableService := services.NewTableService(tableRepo, db)
	menuService := services.NewMenuService(menuRepo, outletRepo, db)
	orderService := services.NewOrderService(orderRepo, tableRepo, menuRepo, outletRepo, hub, db)
	kotService := services.NewKOTService(orderRepo, tableRepo, hub, db)
	billingService := services.NewBillingService(billingRepo, orderRepo, tableRepo, hub, db)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, outletRepo, db)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	outletHandlers := handlers.NewOutletHandlers(outletService)
	tableHandlers := handlers.NewTableHandlers(tableService)
	menuHandlers := handlers.NewMenuHandlers(menuService)
	orderHandlers := handlers.NewOrderHandlers(orderService, kotService)
	billingHandlers := handlers.NewBillingHandlers(billingService)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionService)
	notificationHandlers := handlers.NewNotificationHandlers(hub, outletRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.GinLogger())
	r.Use(cors.New(corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	registerAuthRoutes(api, authHandlers, accessService)
	registerOutletRoutes(api, outletHandlers, accessService)
	registerTableRoutes(api, tableHandlers, accessService)
	registerMenuRoutes(api, menuHandlers, accessService)
	registerOrderRoutes(api, orderHandlers, billingHandlers, accessService)
	registerBillingRoutes(api, billingHandlers, accessService)
	registerSubscriptionRoutes(api, subscriptionHandlers, accessService)
	registerNotificationRoutes(api, notificationHandlers, accessService)

	return r
}

func authChain(accessService services.AccessService) gin.HandlerFunc {
	return middleware.AuthMiddleware(accessService)
}

// corsConfig builds the CORS policy from CORS_ALLOWED_ORIGINS, a
// comma-separated origin list. The gin-contrib middleware rejects
// credentials together with a wildcard origin, so credentials are only
// allowed when an explicit list is configured.
func corsConfig() cors.Config {
	origins := strings.Split(utils.Getenv("CORS_ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	wildcard := len(origins) == 1 && origins[0] == "*"
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !wildcard,
		MaxAge:           12 * time.Hour,
	}
}
