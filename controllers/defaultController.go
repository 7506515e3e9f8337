package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the StellarSoil API.

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account

PRODUCT
- POST "/products" - Create new product (farmer)
- GET "/products" - Get all products
- GET "/products/:id" - Get product by ID

CART
- POST "/cart" - Add item to cart
- GET "/cart" - Get your cart

PAYMENTS
- POST "/payments/initialize" - Open a gateway session for a cart
- POST "/payments/verify" - Verify gateway callback and create the order

ORDERS
- POST "/orders" - Place a cash-on-delivery order
- GET "/orders" - Your orders
- GET "/orders/farm" - Incoming orders for your farm (farmer)
- GET "/orders/:orderId" - Order snapshot (polled by trackers)
- PATCH "/orders/:orderId/status" - Advance fulfillment status (farmer/admin)
- PUT "/orders/:orderId/cancel" - Cancel an order
- POST "/orders/verify-delivery" - Confirm COD hand-off with the delivery code
- POST "/orders/:orderId/regenerate-code" - Replace a lost delivery code`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
