package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/controllers"
	"github.com/stellarsoil/stellarsoil-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	orders := server.Group("/orders", middlewares.RequireAuth())
	{
		orders.POST("", middlewares.RequireBuyer(), controllers.CreateCODOrder)
		orders.GET("", controllers.GetBuyerOrders)
		orders.GET("/farm", middlewares.RequireFarmer(), controllers.GetFarmOrders)
		orders.GET("/all", middlewares.RequireAdmin(), controllers.GetAllOrders)
		orders.GET("/:orderId", controllers.GetOrder)
		orders.PATCH("/:orderId/status", middlewares.RequireFarmer(), controllers.UpdateOrderStatus)
		orders.PUT("/:orderId/cancel", controllers.CancelOrder)
		orders.POST("/verify-delivery", controllers.VerifyOrderDelivery)
		orders.POST("/:orderId/regenerate-code", controllers.RegenerateVerificationCode)
	}
}
