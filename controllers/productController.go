package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/initializers"
	"github.com/stellarsoil/stellarsoil-api/models"
	"gorm.io/gorm"
)

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"msg":   message,
		"error": errMsg,
	})
}

func CreateProduct(ctx *gin.Context) {
	var product models.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if product.FarmID == 0 {
		product.FarmID = currentUserFarmID(ctx)
	}

	if err := initializers.DB.Create(&product).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create product", err)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

func GetProducts(ctx *gin.Context) {
	var products []models.Product
	if result := initializers.DB.Find(&products); result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch products", result.Error)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

func GetProduct(ctx *gin.Context) {
	productId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	var product models.Product
	if err := initializers.DB.First(&product, productId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch product", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}
