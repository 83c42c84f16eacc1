package api

import (
	"github.com/deaffx/mottu-yard-devops/internal/api/handler"
	"github.com/deaffx/mottu-yard-devops/internal/api/middleware"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	authService *service.AuthService,
	yardService *service.YardService,
	lprService *service.LPRService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		vehicleH := handler.NewVehicleHandler(yardService)
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", authMw.AuthorizeRole("admin"), vehicleH.CreateVehicle)
			vehicleRoutes.GET("", vehicleH.ListVehicles)
			vehicleRoutes.GET("/count", vehicleH.CountVehicles)
			vehicleRoutes.GET("/plate/:plate", vehicleH.GetVehicleByPlate)
			vehicleRoutes.GET("/:id", vehicleH.GetVehicle)
			vehicleRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), vehicleH.UpdateVehicle)
			vehicleRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), vehicleH.DeleteVehicle)
			vehicleRoutes.POST("/:id/maintenance", authMw.AuthorizeRole("admin"), vehicleH.OpenMaintenance)
			vehicleRoutes.GET("/:id/maintenance", vehicleH.ListMaintenance)
		}

		lotH := handler.NewLotHandler(yardService)
		lotRoutes := v1.Group("/lots")
		{
			lotRoutes.POST("", authMw.AuthorizeRole("admin"), lotH.CreateLot)
			lotRoutes.GET("", lotH.ListLots)
			lotRoutes.GET("/:id", lotH.GetLot)
			lotRoutes.GET("/:id/vehicles", lotH.ListLotVehicles)
			lotRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), lotH.UpdateLot)
			lotRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), lotH.DeleteLot)
		}

		if lprService != nil {
			lprH := handler.NewLPRHandler(lprService, yardService)
			lprRoutes := v1.Group("/lpr")
			lprRoutes.Use(authMw.AuthorizeRole("admin", "operator"))
			{
				lprRoutes.POST("/process-image", lprH.ProcessImage)
			}
		}
	}
	return r
}
