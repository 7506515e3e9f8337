package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/initializers"
	"github.com/stellarsoil/stellarsoil-api/models"
	"gorm.io/gorm"
)

// getOrCreateCart returns the user's cart, creating an empty one on first use.
func getOrCreateCart(userId int) (models.Cart, error) {
	var cart models.Cart
	err := initializers.DB.Where("user_id = ?", userId).Preload("Items").First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userId}
		err = initializers.DB.Create(&cart).Error
	}
	return cart, err
}

func AddCartItem(ctx *gin.Context) {
	var input struct {
		ProductId int     `json:"productId" binding:"required"`
		Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	var product models.Product
	if err := initializers.DB.First(&product, input.ProductId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch product")
		}
		return
	}

	if product.Stock < input.Quantity {
		sendErrorResponse(ctx, http.StatusBadRequest, "Insufficient stock for "+product.Name)
		return
	}

	cart, err := getOrCreateCart(currentUserID(ctx))
	if err != nil {
		log.Println("Cart error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	var existingItem models.CartItem
	err = initializers.DB.Where("cart_id = ? AND product_id = ?", cart.ID, input.ProductId).First(&existingItem).Error
	if err == nil {
		existingItem.Quantity += input.Quantity
		if err := initializers.DB.Save(&existingItem).Error; err != nil {
			log.Println("Update error:", err)
			sendErrorResponse(ctx, http.StatusBadRequest, "Unable to update cart item quantity.")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Cart item quantity updated",
			"id":      existingItem.ID,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Database error: ", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	cartItem := models.CartItem{
		CartID:       int(cart.ID),
		ProductId:    input.ProductId,
		ProductName:  product.Name,
		UnitPrice:    product.Price,
		Unit:         product.Unit,
		Quantity:     input.Quantity,
		SourceFarmID: product.FarmID,
	}
	if err := initializers.DB.Create(&cartItem).Error; err != nil {
		log.Println("Create error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to create cart item")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": product.Name + " added to cart",
		"id":      cartItem.ID,
	})
}

func GetCart(ctx *gin.Context) {
	var cart models.Cart
	result := initializers.DB.
		Where("user_id = ?", currentUserID(ctx)).
		Preload("Items").
		First(&cart)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Cart not found")
		} else {
			log.Println("Database error:", result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		}
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": cart})
}
