package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/controllers"
	"github.com/stellarsoil/stellarsoil-api/middlewares"
)

func ProductRoutes(server *gin.Engine) {
	server.POST("/products", middlewares.RequireAuth(), middlewares.RequireFarmer(), controllers.CreateProduct)
	server.GET("/products", controllers.GetProducts)
	server.GET("/products/:id", controllers.GetProduct)
}
