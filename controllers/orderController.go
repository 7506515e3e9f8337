package controllers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stellarsoil/stellarsoil-api/initializers"
	"github.com/stellarsoil/stellarsoil-api/models"
	"github.com/stellarsoil/stellarsoil-api/utils"
	"gorm.io/gorm"
)

func findOrder(ctx *gin.Context, orderId int) (models.Order, bool) {
	var order models.Order
	err := initializers.DB.Preload("Items").Preload("StatusHistory").First(&order, orderId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return order, false
	}
	return order, true
}

// saveTransition persists the order's updated fields together with the
// freshly appended status history entry, in one transaction.
func saveTransition(order *models.Order) error {
	event := order.StatusHistory[len(order.StatusHistory)-1]
	return initializers.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"order_status":   order.OrderStatus,
			"payment_status": order.PaymentStatus,
		}
		if order.DeliveryVerified {
			updates["delivery_verified"] = true
			updates["delivery_verified_at"] = order.DeliveryVerifiedAt
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
}

// GetOrder returns the current order snapshot. Buyers may only read their
// own orders; farmers see orders containing their farm's items.
func GetOrder(ctx *gin.Context) {
	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	order, ok := findOrder(ctx, orderId)
	if !ok {
		return
	}

	if !canReadOrder(ctx, order) {
		sendErrorResponse(ctx, http.StatusForbidden, "Not authorized")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"order": order,
		"step":  order.CurrentStep(),
	})
}

// orderHasFarmItems reports whether any item in the order comes from the
// given farm.
func orderHasFarmItems(order models.Order, farmID int) bool {
	for _, item := range order.Items {
		if item.SourceFarmID == farmID {
			return true
		}
	}
	return false
}

func canReadOrder(ctx *gin.Context, order models.Order) bool {
	switch currentUserRole(ctx) {
	case models.RoleAdmin:
		return true
	case models.RoleFarmer:
		return orderHasFarmItems(order, currentUserFarmID(ctx))
	default:
		return order.BuyerID == currentUserID(ctx)
	}
}

// canRegenerateCode limits code rotation to the buyer who owns the order or
// a farmer whose farm the order contains. Nobody else gets to see a fresh
// hand-off code.
func canRegenerateCode(ctx *gin.Context, order models.Order) bool {
	if order.BuyerID == currentUserID(ctx) {
		return true
	}
	return currentUserRole(ctx) == models.RoleFarmer && orderHasFarmItems(order, currentUserFarmID(ctx))
}

func GetBuyerOrders(ctx *gin.Context) {
	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var orders []models.Order
	result := initializers.DB.Preload("Items").Preload("StatusHistory").
		Where("buyer_id = ?", currentUserID(ctx)).
		Order("created_at " + sortOrder).
		Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

// GetFarmOrders lists incoming orders that contain items from the
// authenticated farmer's farm.
func GetFarmOrders(ctx *gin.Context) {
	farmID := currentUserFarmID(ctx)

	var orders []models.Order
	result := initializers.DB.Preload("Items").Preload("StatusHistory").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.source_farm_id = ?", farmID).
		Group("orders.id").
		Order("orders.created_at desc").
		Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch farm orders.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

// listParams parses pagination and sort query values, falling back to the
// defaults for anything non-positive or unknown.
func listParams(ctx *gin.Context) (page, limit int, sortOrder string) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	sortOrder = ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return page, limit, sortOrder
}

// GetAllOrders is the admin view over every order, paginated.
func GetAllOrders(ctx *gin.Context) {
	page, limit, sortOrder := listParams(ctx)
	offset := (page - 1) * limit

	var orders []models.Order
	result := initializers.DB.Preload("Items").Preload("StatusHistory").
		Order("created_at " + sortOrder).
		Limit(limit).Offset(offset).
		Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	var count int64
	initializers.DB.Model(&models.Order{}).Count(&count)
	totalPages := math.Ceil(float64(count) / float64(limit))

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": int(totalPages) > page,
		},
	})
}

// UpdateOrderStatus advances an order along the fulfillment path. Driven by
// farmers and admins; buyers never move status directly.
func UpdateOrderStatus(ctx *gin.Context) {
	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	order, ok := findOrder(ctx, orderId)
	if !ok {
		return
	}

	if !canReadOrder(ctx, order) {
		sendErrorResponse(ctx, http.StatusForbidden, "Not authorized")
		return
	}

	cause := models.CauseFarmer
	if currentUserRole(ctx) == models.RoleAdmin {
		cause = models.CauseAdmin
	}

	if err := order.Transition(input.Status, cause, time.Now()); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if err := saveTransition(&order); err != nil {
		log.Println("Transition save error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Order status updated successfully.",
		"order":   order,
	})
}

// CancelOrder lets the buyer cancel before the order is committed to
// fulfillment. Stock is restored for every item.
func CancelOrder(ctx *gin.Context) {
	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	order, ok := findOrder(ctx, orderId)
	if !ok {
		return
	}

	if order.BuyerID != currentUserID(ctx) && currentUserRole(ctx) != models.RoleAdmin {
		sendErrorResponse(ctx, http.StatusForbidden, "Not authorized")
		return
	}

	cause := models.CauseBuyerCancel
	if currentUserRole(ctx) == models.RoleAdmin {
		cause = models.CauseAdmin
	}

	if err := order.Transition(models.StatusCancelled, cause, time.Now()); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Order can no longer be cancelled")
		return
	}

	event := order.StatusHistory[len(order.StatusHistory)-1]
	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("order_status", order.OrderStatus).Error; err != nil {
			return err
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductId).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Println("Cancel error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Error cancelling order")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

// VerifyOrderDelivery closes out a COD order at hand-off: the supplied code
// must match, verification fires the delivered transition and settles the
// payment.
func VerifyOrderDelivery(ctx *gin.Context) {
	var input struct {
		OrderId          int    `json:"orderId" binding:"required"`
		VerificationCode string `json:"verificationCode" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	order, ok := findOrder(ctx, input.OrderId)
	if !ok {
		return
	}

	if !canReadOrder(ctx, order) {
		sendErrorResponse(ctx, http.StatusForbidden, "Not authorized to verify this order")
		return
	}

	if err := order.VerifyDelivery(input.VerificationCode, time.Now()); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if err := saveTransition(&order); err != nil {
		log.Println("Verification save error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Error verifying order")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"order":   order,
		"msg":     "Order verified and marked as delivered",
	})
}

// RegenerateVerificationCode issues a replacement hand-off code when the
// buyer has lost theirs. The old code stops validating immediately.
func RegenerateVerificationCode(ctx *gin.Context) {
	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	order, ok := findOrder(ctx, orderId)
	if !ok {
		return
	}

	if !canRegenerateCode(ctx, order) {
		sendErrorResponse(ctx, http.StatusForbidden, "Not authorized")
		return
	}

	code, err := utils.GenerateDeliveryCode(deliveryCodeLength)
	if err != nil {
		log.Println("Code generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	now := time.Now()
	if err := order.RegenerateVerificationCode(code, now); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	result := initializers.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
		"verification_code": order.VerificationCode,
		"code_issued_at":    now,
	})
	if result.Error != nil {
		log.Println("Code save error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to regenerate code")
		return
	}

	var buyer models.User
	if err := initializers.DB.First(&buyer, order.BuyerID).Error; err == nil {
		if err := utils.SendVerificationCodeEmail(buyer.Email, order.ID, code); err != nil {
			log.Println("Error sending verification code email:", err)
		}
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Verification code regenerated.", "code": code})
}
