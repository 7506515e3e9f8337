package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stellarsoil/stellarsoil-api/models"
	"github.com/stellarsoil/stellarsoil-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "gateway_secret"

func validDetails() DeliveryDetails {
	return DeliveryDetails{
		Address: "12 Green Lane, Pune",
		Type:    "delivery",
		Slot:    time.Now().Add(4 * time.Hour).Format(time.RFC3339),
	}
}

// fakeAPI emulates the order API's payment surface: signature verification
// and idempotent order creation keyed on the gateway order id.
type fakeAPI struct {
	mu         sync.Mutex
	orders     map[string]models.Order
	nextID     uint
	requests   atomic.Int64
	authStatus int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		orders: map[string]models.Order{},
		nextID: 1,
	}
}

// handlePost registers handler for pattern, restricted to POST requests.
// (Method-prefixed ServeMux patterns require Go 1.22+.)
func handlePost(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	})
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	handlePost(mux, "/payments/initialize", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.authStatus != 0 {
			writeJSON(w, f.authStatus, map[string]string{"msg": "denied"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"orderId":  "order_gw123",
			"amount":   45000,
			"currency": "INR",
			"keyId":    "rzp_test_key",
		})
	})
	handlePost(mux, "/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		var input struct {
			GatewayOrderId   string `json:"gatewayOrderId"`
			GatewayPaymentId string `json:"gatewayPaymentId"`
			GatewaySignature string `json:"gatewaySignature"`
		}
		json.NewDecoder(r.Body).Decode(&input)

		if !utils.VerifyPaymentSignature(input.GatewayOrderId, input.GatewayPaymentId, input.GatewaySignature, testSecret) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"msg":  "Invalid payment signature",
				"code": "payment_verification_failed",
			})
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		order, exists := f.orders[input.GatewayOrderId]
		if !exists {
			order = models.Order{
				Model:          gorm.Model{ID: f.nextID},
				PaymentStatus:  models.PaymentStatusPaid,
				OrderStatus:    models.StatusPlaced,
				PaymentOrderID: input.GatewayOrderId,
			}
			f.nextID++
			f.orders[input.GatewayOrderId] = order
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	})
	handlePost(mux, "/orders", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		writeJSON(w, http.StatusCreated, map[string]any{"order": models.Order{
			Model:            gorm.Model{ID: f.nextID},
			TotalAmount:      500,
			Discount:         50,
			PaymentMethod:    models.PaymentMethodCOD,
			PaymentStatus:    models.PaymentStatusPending,
			OrderStatus:      models.StatusPlaced,
			VerificationCode: "H7K2M9",
		}})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestInitiateValidatesBeforeAnyNetworkCall(t *testing.T) {
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := New(server.URL, "token")
	_, err := c.Initiate(context.Background(), 1, DeliveryDetails{Address: "  ", Slot: ""})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, int64(0), api.requests.Load())
}

func TestInitiateReturnsGatewaySession(t *testing.T) {
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := New(server.URL, "token")
	session, err := c.Initiate(context.Background(), 1, validDetails())
	require.NoError(t, err)
	assert.Equal(t, "order_gw123", session.OrderID)
	assert.Equal(t, 45000.0, session.Amount)
	assert.Equal(t, "INR", session.Currency)
	assert.Equal(t, "rzp_test_key", session.KeyID)
}

func TestInitiateGatewayUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"msg": "Error initializing payment"})
	}))
	defer server.Close()

	c := New(server.URL, "token")
	_, err := c.Initiate(context.Background(), 1, validDetails())

	var gatewayErr *GatewayUnavailableError
	assert.ErrorAs(t, err, &gatewayErr)
}

func TestInitiateAuthErrors(t *testing.T) {
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := New(server.URL, "token")
	var invalidated atomic.Bool
	c.OnSessionInvalid = func() { invalidated.Store(true) }

	api.authStatus = http.StatusUnauthorized
	_, err := c.Initiate(context.Background(), 1, validDetails())
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.True(t, invalidated.Load())

	api.authStatus = http.StatusForbidden
	_, err = c.Initiate(context.Background(), 1, validDetails())
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestCompleteRejectsBadSignature(t *testing.T) {
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := New(server.URL, "token")
	_, err := c.Complete(context.Background(), 1, GatewayConfirmation{
		OrderID:   "order_gw123",
		PaymentID: "pay_456",
		Signature: "forged",
	}, validDetails())

	var verificationErr *PaymentVerificationError
	require.ErrorAs(t, err, &verificationErr)
	assert.Equal(t, "Invalid payment signature", verificationErr.Message)

	// No order was created for the failed attempt.
	assert.Empty(t, api.orders)
}

func TestCompleteKeepsValidationFailuresApartFromRejections(t *testing.T) {
	// A 400 without the verification-failure code is ordinary input
	// validation: the confirmation was never judged, so the caller must not
	// be told to restart payment.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid delivery slot"})
	}))
	defer server.Close()

	c := New(server.URL, "token")
	_, err := c.Complete(context.Background(), 1, GatewayConfirmation{
		OrderID:   "order_gw123",
		PaymentID: "pay_456",
		Signature: utils.SignPayment("order_gw123", "pay_456", testSecret),
	}, validDetails())

	var verificationErr *PaymentVerificationError
	assert.False(t, errors.As(err, &verificationErr))

	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, http.StatusBadRequest, orderErr.StatusCode)
	assert.Equal(t, "Invalid delivery slot", orderErr.Message)
}

func TestCompleteIsIdempotentPerGatewayOrder(t *testing.T) {
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := New(server.URL, "token")
	confirmation := GatewayConfirmation{
		OrderID:   "order_gw123",
		PaymentID: "pay_456",
		Signature: utils.SignPayment("order_gw123", "pay_456", testSecret),
	}

	first, err := c.Complete(context.Background(), 1, confirmation, validDetails())
	require.NoError(t, err)

	// A duplicate callback for the same gateway order yields the same order,
	// never a second one.
	second, err := c.Complete(context.Background(), 1, confirmation, validDetails())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, api.orders, 1)
}

func TestCompleteCOD(t *testing.T) {
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := New(server.URL, "token")
	order, err := c.CompleteCOD(context.Background(), 1, validDetails())
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.StatusPlaced, order.OrderStatus)
	assert.NotEmpty(t, order.VerificationCode)
	assert.Equal(t, 450.0, order.PayableAmount())
}

func TestGetOrderMapsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Order not found"})
	}))
	defer server.Close()

	c := New(server.URL, "token")
	_, err := c.GetOrder(context.Background(), 42)

	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, http.StatusNotFound, orderErr.StatusCode)
	assert.Equal(t, "Order not found", orderErr.Message)
}
