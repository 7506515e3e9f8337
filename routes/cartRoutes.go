package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/controllers"
	"github.com/stellarsoil/stellarsoil-api/middlewares"
)

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/cart", middlewares.RequireAuth(), middlewares.RequireBuyer())
	{
		cart.POST("", controllers.AddCartItem)
		cart.GET("", controllers.GetCart)
	}
}
