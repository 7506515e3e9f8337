package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/controllers"
	"github.com/stellarsoil/stellarsoil-api/middlewares"
)

func PaymentRoutes(server *gin.Engine) {
	payments := server.Group("/payments", middlewares.RequireAuth(), middlewares.RequireBuyer())
	{
		payments.POST("/initialize", controllers.InitializePayment)
		payments.POST("/verify", controllers.VerifyPayment)
	}
}
