package router

import (
	"github.com/harimoradiya/rmspos/internal/handlers"
	"github.com/harimoradiya/rmspos/internal/middleware"
	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/services"

	"github.com/gin-gonic/gin"
)

// Role sets used on route groups. Fine-grained outlet scoping happens in
// the services; the router only gates by role.
var (
	managerRoles = []string{string(models.RoleSuperAdmin), string(models.RoleOwner), string(models.RoleManager)}
	ownerRoles   = []string{string(models.RoleSuperAdmin), string(models.RoleOwner)}
	orderRoles   = []string{string(models.RoleSuperAdmin), string(models.RoleOwner), string(models.RoleManager), string(models.RoleWaiter)}
	kitchenRoles = []string{string(models.RoleSuperAdmin), string(models.RoleOwner), string(models.RoleManager), string(models.RoleKitchen)}
	billingRoles = []string{string(models.RoleSuperAdmin), string(models.RoleOwner), string(models.RoleManager), string(models.RoleWaiter)}
)

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandlers, accessService services.AccessService) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", authChain(accessService), h.Me)

		// Open registration is limited to bootstrap deployments; staff
		// accounts are normally created by an owner or superadmin.
		auth.POST("/register", h.Register)
	}

	users := api.Group("/users", authChain(accessService), middleware.RoleAuthMiddleware(ownerRoles...))
	{
		users.GET("", h.ListUsers)
		users.PUT("/:userId", h.UpdateUser)
		users.DELETE("/:userId", h.DeactivateUser)
	}
}

func registerOutletRoutes(api *gin.RouterGroup, h *handlers.OutletHandlers, accessService services.AccessService) {
	chains := api.Group("/chains", authChain(accessService), middleware.RoleAuthMiddleware(ownerRoles...))
	{
		chains.POST("", h.CreateChain)
		chains.GET("", h.GetMyChains)
		chains.DELETE("/:chainId", h.DeleteChain)
		chains.GET("/:chainId/outlets", h.GetOutletsByChain)
	}

	outlets := api.Group("/outlets", authChain(accessService))
	{
		outlets.POST("", middleware.RoleAuthMiddleware(ownerRoles...), h.CreateOutlet)
		outlets.GET("/:outletId", h.GetOutlet)
		outlets.PUT("/:outletId", middleware.RoleAuthMiddleware(ownerRoles...), h.UpdateOutlet)
	}
}

func registerTableRoutes(api *gin.RouterGroup, h *handlers.TableHandlers, accessService services.AccessService) {
	areas := api.Group("/areas", authChain(accessService), middleware.RoleAuthMiddleware(managerRoles...))
	{
		areas.POST("", h.CreateArea)
		areas.PUT("/:areaId", h.UpdateArea)
		areas.DELETE("/:areaId", h.DeleteArea)
	}

	tables := api.Group("/tables", authChain(accessService))
	{
		tables.POST("", middleware.RoleAuthMiddleware(managerRoles...), h.CreateTable)
		tables.GET("/:tableId", h.GetTable)
		tables.PUT("/:tableId", middleware.RoleAuthMiddleware(managerRoles...), h.UpdateTable)
		tables.PATCH("/:tableId/status", middleware.RoleAuthMiddleware(managerRoles...), h.UpdateTableStatus)
		tables.DELETE("/:tableId", middleware.RoleAuthMiddleware(managerRoles...), h.DeleteTable)
	}

	// Floor plan reads nested under the outlet.
	outletViews := api.Group("/outlets/:outletId", authChain(accessService))
	{
		outletViews.GET("/areas", h.GetAreas)
		outletViews.GET("/tables", h.GetTables)
	}
}

func registerMenuRoutes(api *gin.RouterGroup, h *handlers.MenuHandlers, accessService services.AccessService) {
	menu := api.Group("/menu", authChain(accessService))
	{
		menu.GET("/categories", h.GetCategories)
		menu.GET("/items", h.GetItems)

		menu.POST("/categories", middleware.RoleAuthMiddleware(managerRoles...), h.CreateCategory)
		menu.PUT("/categories/:categoryId", middleware.RoleAuthMiddleware(managerRoles...), h.UpdateCategory)
		menu.DELETE("/categories/:categoryId", middleware.RoleAuthMiddleware(managerRoles...), h.DeleteCategory)

		menu.POST("/items", middleware.RoleAuthMiddleware(managerRoles...), h.CreateItem)
		menu.PUT("/items/:itemId", middleware.RoleAuthMiddleware(managerRoles...), h.UpdateItem)
		menu.DELETE("/items/:itemId", middleware.RoleAuthMiddleware(managerRoles...), h.DeleteItem)
	}
}

func registerOrderRoutes(api *gin.RouterGroup, h *handlers.OrderHandlers, billing *handlers.BillingHandlers, accessService services.AccessService) {
	orders := api.Group("/orders", authChain(accessService))
	{
		orders.POST("", middleware.RoleAuthMiddleware(orderRoles...), h.CreateOrder)
		orders.GET("", h.GetOrders)
		orders.GET("/token/:tokenNumber", h.GetOrderByToken)
		orders.GET("/:orderId", h.GetOrder)
		orders.PATCH("/:orderId/status", middleware.RoleAuthMiddleware(orderRoles...), h.UpdateOrderStatus)
		orders.POST("/:orderId/items", middleware.RoleAuthMiddleware(orderRoles...), h.AddItems)
		orders.GET("/:orderId/invoices", billing.GetInvoicesByOrder)
	}

	kots := api.Group("/kots", authChain(accessService))
	{
		kots.GET("", h.ListKOTs)
		kots.GET("/:kotId", h.GetKOT)
		kots.PATCH("/:kotId/status", middleware.RoleAuthMiddleware(kitchenRoles...), h.UpdateKOTStatus)
	}
}

func registerBillingRoutes(api *gin.RouterGroup, h *handlers.BillingHandlers, accessService services.AccessService) {
	invoices := api.Group("/invoices", authChain(accessService), middleware.RoleAuthMiddleware(billingRoles...))
	{
		invoices.POST("", h.CreateInvoice)
		invoices.POST("/split", h.SplitBill)
		invoices.GET("/:invoiceId", h.GetInvoice)
		invoices.POST("/:invoiceId/complete", h.CompletePayment)
	}
}

func registerSubscriptionRoutes(api *gin.RouterGroup, h *handlers.SubscriptionHandlers, accessService services.AccessService) {
	subscriptions := api.Group("/subscriptions", authChain(accessService))
	{
		subscriptions.GET("/me", h.GetMySubscription)
		subscriptions.POST("/:subscriptionId/renew", h.RenewSubscription)

		subscriptions.POST("", middleware.RoleAuthMiddleware(ownerRoles...), h.CreateSubscription)
		subscriptions.GET("", middleware.RoleAuthMiddleware(ownerRoles...), h.ListSubscriptions)
		subscriptions.PUT("/:subscriptionId", middleware.RoleAuthMiddleware(ownerRoles...), h.UpdateSubscription)
		subscriptions.DELETE("/:subscriptionId", middleware.RoleAuthMiddleware(ownerRoles...), h.DeleteSubscription)
	}
}

func registerNotificationRoutes(api *gin.RouterGroup, h *handlers.NotificationHandlers, accessService services.AccessService) {
	notificationsGroup := api.Group("/notifications", authChain(accessService))
	{
		notificationsGroup.GET("/stream", h.Stream)
	}
}
