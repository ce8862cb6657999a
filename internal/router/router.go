package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tradeflow/internal/domain"
	"tradeflow/internal/handler"
	"tradeflow/internal/middleware"
	"tradeflow/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	AuthService service.AuthService
	DocumentH   *handler.DocumentHandler
	QuoteH      *handler.QuoteHandler
	ForwarderH  *handler.ForwarderHandler
	HealthH     *handler.HealthHandler
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(deps Deps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(deps.CORSOrigins))

	// Health checks
	r.GET("/healthz", deps.HealthH.Liveness)
	r.GET("/readyz", deps.HealthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// Protected routes - require valid JWT
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthService))
	if deps.RateLimiter != nil {
		protected.Use(deps.RateLimiter.Middleware())
	}

	// Document routes
	documents := protected.Group("/documents")
	documents.POST("/uploadInvoice", deps.DocumentH.UploadInvoice)
	documents.POST("/shipments/:shipment_id/upload", deps.DocumentH.Upload)
	documents.GET("/shipments/:shipment_id/list", deps.DocumentH.ListByShipment)
	documents.GET("/:document_id", deps.DocumentH.GetByID)
	documents.POST("/:document_id/extract", deps.DocumentH.Extract)
	documents.POST("/:document_id/autofill", deps.DocumentH.Autofill)

	// Quote routes
	protected.POST("/shipments/:shipment_id/quotes", middleware.RequireRole(domain.RoleForwarder), deps.QuoteH.Create)
	protected.GET("/shipments/:shipment_id/quotes", deps.QuoteH.ListByShipment)
	protected.POST("/shipments/:shipment_id/accept-quote", deps.QuoteH.Accept)
	protected.PUT("/quotes/:quote_id", deps.QuoteH.Update)

	// Forwarder routes
	forwarder := protected.Group("/forwarder")
	forwarder.Use(middleware.RequireRole(domain.RoleForwarder, domain.RoleAdmin))
	forwarder.GET("/show-shipments", deps.ForwarderH.ShowShipments)
	forwarder.GET("/my-profile", deps.ForwarderH.MyProfile)
	forwarder.PUT("/request-accept/:shipment_id", deps.ForwarderH.RequestAccept)
	forwarder.POST("/all-quotes", deps.ForwarderH.AllQuotes)
	forwarder.GET("/accepted-quotes", deps.ForwarderH.AcceptedQuotes)
	forwarder.GET("/accepted-quotes/export", deps.ForwarderH.ExportAcceptedQuotes)
	forwarder.GET("/show-drivers", deps.ForwarderH.ShowDrivers)
	forwarder.PUT("/assign-driver/:shipment_id/:driver_id", deps.ForwarderH.AssignDriver)

	return r
}
