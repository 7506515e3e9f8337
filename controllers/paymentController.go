package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/stellarsoil/stellarsoil-api/initializers"
	"github.com/stellarsoil/stellarsoil-api/models"
	"github.com/stellarsoil/stellarsoil-api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const deliveryCodeLength = 6

func gatewayBaseURL() string {
	if base := os.Getenv("RAZORPAY_BASE_URL"); base != "" {
		return base
	}
	return "https://api.razorpay.com"
}

// createGatewayOrder opens a payment session with the gateway for the given
// amount. Amounts are sent in paise, as the gateway expects.
func createGatewayOrder(amount float64) (map[string]any, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are not set")
	}

	requestBody := map[string]any{
		"amount":          int64(amount * 100),
		"currency":        "INR",
		"receipt":         "rcpt_" + uuid.NewString(),
		"payment_capture": 1,
	}

	client := resty.New().SetTimeout(30 * time.Second)
	resp, err := client.R().
		SetBasicAuth(keyID, keySecret).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(requestBody).
		Post(gatewayBaseURL() + "/v1/orders")

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gateway order request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var gatewayOrder map[string]any
	if err := json.Unmarshal(resp.Body(), &gatewayOrder); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return gatewayOrder, nil
}

// loadBuyerCart fetches the caller's cart and checks it is theirs and non-empty.
func loadBuyerCart(ctx *gin.Context, cartId int) (models.Cart, bool) {
	var cart models.Cart
	err := initializers.DB.Where("id = ? AND user_id = ?", cartId, currentUserID(ctx)).
		Preload("Items").First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Cart not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		}
		return cart, false
	}
	if len(cart.Items) == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Cart is empty")
		return cart, false
	}
	return cart, true
}

func orderItemsFromCart(cart models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, models.OrderItem{
			ProductId:    item.ProductId,
			Name:         item.ProductName,
			UnitPrice:    item.UnitPrice,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			SourceFarmID: item.SourceFarmID,
		})
	}
	return items
}

// decrementStock reduces stock for every ordered item inside the given tx.
func decrementStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		result := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", item.ProductId, item.Quantity).
			Update("stock", gorm.Expr("stock - ?", item.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("insufficient stock for %s", item.Name)
		}
	}
	return nil
}

// InitializePayment opens a gateway session for the caller's cart.
func InitializePayment(ctx *gin.Context) {
	var input struct {
		CartId       int    `json:"cartId" binding:"required"`
		DiscountCode string `json:"discountCode"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, ok := loadBuyerCart(ctx, input.CartId)
	if !ok {
		return
	}

	total, discount := cart.Totals(input.DiscountCode)
	payable := total - discount
	if payable < 0 {
		payable = 0
	}

	gatewayOrder, err := createGatewayOrder(payable)
	if err != nil {
		log.Println("Gateway error:", err)
		sendErrorResponse(ctx, http.StatusBadGateway, "Error initializing payment")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orderId":  gatewayOrder["id"],
		"amount":   gatewayOrder["amount"],
		"currency": gatewayOrder["currency"],
		"keyId":    os.Getenv("RAZORPAY_KEY_ID"),
	})
}

type verifyPaymentInput struct {
	CartId           int    `json:"cartId" binding:"required"`
	GatewayOrderId   string `json:"gatewayOrderId" binding:"required"`
	GatewayPaymentId string `json:"gatewayPaymentId" binding:"required"`
	GatewaySignature string `json:"gatewaySignature" binding:"required"`
	DeliveryAddress  string `json:"deliveryAddress" binding:"required"`
	DeliveryType     string `json:"deliveryType" binding:"required,oneof=delivery pickup"`
	DeliverySlot     string `json:"deliverySlot" binding:"required"`
	PaymentMethod    string `json:"paymentMethod" binding:"omitempty,oneof=card upi"`
	DiscountCode     string `json:"discountCode"`
}

// VerifyPayment validates the gateway callback and creates the order. The
// order is created atomically: a signature mismatch leaves no partial state
// behind, and a duplicate callback for the same gateway order returns the
// already created order.
func VerifyPayment(ctx *gin.Context) {
	var input verifyPaymentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if !utils.VerifyPaymentSignature(input.GatewayOrderId, input.GatewayPaymentId, input.GatewaySignature, secret) {
		// The code field lets clients tell a rejected confirmation apart from
		// ordinary input validation failures on the same endpoint.
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{
			"msg":  "Invalid payment signature",
			"code": "payment_verification_failed",
		})
		return
	}

	// Idempotency check: the gateway order id is unique per order.
	var existing models.Order
	err := initializers.DB.Preload("Items").Preload("StatusHistory").
		Where("payment_order_id = ?", input.GatewayOrderId).First(&existing).Error
	if err == nil {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"order": existing})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	cart, ok := loadBuyerCart(ctx, input.CartId)
	if !ok {
		return
	}

	slot, err := time.Parse(time.RFC3339, input.DeliverySlot)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid delivery slot")
		return
	}

	total, discount := cart.Totals(input.DiscountCode)
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCard
	}

	rawPayload, _ := json.Marshal(gin.H{
		"orderId":   input.GatewayOrderId,
		"paymentId": input.GatewayPaymentId,
		"signature": input.GatewaySignature,
	})

	now := time.Now()
	order := models.Order{
		BuyerID:         currentUserID(ctx),
		Items:           orderItemsFromCart(cart),
		TotalAmount:     total,
		Discount:        discount,
		DiscountCode:    input.DiscountCode,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   models.PaymentStatusPaid,
		OrderStatus:     models.StatusPlaced,
		StatusHistory:   []models.StatusEvent{{Status: models.StatusPlaced, Cause: models.CauseSystem, Timestamp: now}},
		DeliveryType:    input.DeliveryType,
		DeliveryAddress: input.DeliveryAddress,
		DeliverySlot:    &slot,
		PaymentOrderID:  input.GatewayOrderId,
		PaymentID:       input.GatewayPaymentId,
		PaymentDetails:  datatypes.JSON(rawPayload),
	}

	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := decrementStock(tx, order.Items); err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	if err != nil {
		log.Println("Order creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Error verifying payment")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

type codOrderInput struct {
	CartId          int    `json:"cartId" binding:"required"`
	DeliveryAddress string `json:"deliveryAddress" binding:"required"`
	DeliveryType    string `json:"deliveryType" binding:"required,oneof=delivery pickup"`
	DeliverySlot    string `json:"deliverySlot" binding:"required"`
	DiscountCode    string `json:"discountCode"`
}

// CreateCODOrder places a cash-on-delivery order. There is no gateway
// round-trip: the order starts with payment pending and a delivery
// verification code bound to it.
func CreateCODOrder(ctx *gin.Context) {
	var input codOrderInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, ok := loadBuyerCart(ctx, input.CartId)
	if !ok {
		return
	}

	slot, err := time.Parse(time.RFC3339, input.DeliverySlot)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid delivery slot")
		return
	}

	total, discount := cart.Totals(input.DiscountCode)

	now := time.Now()
	order := models.Order{
		BuyerID:         currentUserID(ctx),
		Items:           orderItemsFromCart(cart),
		TotalAmount:     total,
		Discount:        discount,
		DiscountCode:    input.DiscountCode,
		PaymentMethod:   models.PaymentMethodCOD,
		PaymentStatus:   models.PaymentStatusPending,
		OrderStatus:     models.StatusPlaced,
		StatusHistory:   []models.StatusEvent{{Status: models.StatusPlaced, Cause: models.CauseSystem, Timestamp: now}},
		DeliveryType:    input.DeliveryType,
		DeliveryAddress: input.DeliveryAddress,
		DeliverySlot:    &slot,
	}

	code, err := utils.GenerateDeliveryCode(deliveryCodeLength)
	if err != nil {
		log.Println("Code generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if err := order.IssueVerificationCode(code, now); err != nil {
		log.Println("Code issue error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := decrementStock(tx, order.Items); err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	if err != nil {
		log.Println("Order creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Error creating order")
		return
	}

	// Notify the buyer with the hand-off code. Email failure does not fail
	// the order.
	var buyer models.User
	if err := initializers.DB.First(&buyer, order.BuyerID).Error; err == nil {
		if err := utils.SendVerificationCodeEmail(buyer.Email, order.ID, code); err != nil {
			log.Println("Error sending verification code email:", err)
		}
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"order": order})
}
