package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stellarsoil/stellarsoil-api/models"
)

// DeliveryDetails is what the buyer fills in before paying.
type DeliveryDetails struct {
	Address      string
	Type         string
	Slot         string
	DiscountCode string
}

func (d DeliveryDetails) validate() error {
	if strings.TrimSpace(d.Address) == "" || strings.TrimSpace(d.Slot) == "" {
		return &ValidationError{Message: "Please fill in all delivery details"}
	}
	return nil
}

// GatewaySession holds the handshake parameters returned by the gateway via
// the payment initialization endpoint.
type GatewaySession struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"keyId"`
}

// GatewayConfirmation is the callback payload the gateway hands back after a
// successful charge.
type GatewayConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Initiate opens a gateway session for the cart. Delivery details are
// validated locally first: nothing goes over the wire until they are
// complete.
func (c *Client) Initiate(ctx context.Context, cartId uint, details DeliveryDetails) (GatewaySession, error) {
	var session GatewaySession
	if err := details.validate(); err != nil {
		return session, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"cartId":       cartId,
			"discountCode": details.DiscountCode,
		}).
		Post("/payments/initialize")
	if err != nil {
		return session, &GatewayUnavailableError{Err: err}
	}
	if resp.StatusCode() == http.StatusBadGateway {
		return session, &GatewayUnavailableError{Err: &OrderError{StatusCode: resp.StatusCode(), Message: serverMessage(resp)}}
	}
	if resp.IsError() {
		return session, c.mapError(resp)
	}

	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return session, &GatewayUnavailableError{Err: err}
	}
	return session, nil
}

// Complete submits the gateway confirmation for server-side signature
// verification and order creation. Safe to retry with the same confirmation:
// the server deduplicates on the gateway order id, so at most one order is
// ever created per session.
func (c *Client) Complete(ctx context.Context, cartId uint, confirmation GatewayConfirmation, details DeliveryDetails) (models.Order, error) {
	var result struct {
		Order models.Order `json:"order"`
	}
	if err := details.validate(); err != nil {
		return result.Order, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"cartId":           cartId,
			"gatewayOrderId":   confirmation.OrderID,
			"gatewayPaymentId": confirmation.PaymentID,
			"gatewaySignature": confirmation.Signature,
			"deliveryAddress":  details.Address,
			"deliveryType":     details.Type,
			"deliverySlot":     details.Slot,
			"discountCode":     details.DiscountCode,
		}).
		Post("/payments/verify")
	if err != nil {
		return result.Order, &OrderError{Message: "payment verification request failed"}
	}
	// Only a rejected confirmation is a verification failure. Other 400s from
	// the same endpoint (bad delivery slot, empty cart) keep their server
	// message and stay retryable after the input is fixed.
	if resp.StatusCode() == http.StatusBadRequest && serverErrorCode(resp) == codePaymentVerificationFailed {
		return result.Order, &PaymentVerificationError{Message: serverMessage(resp)}
	}
	if resp.IsError() {
		return result.Order, c.mapError(resp)
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return result.Order, &OrderError{Message: "invalid order response"}
	}
	return result.Order, nil
}

// CompleteCOD places a cash-on-delivery order directly, with no gateway
// round-trip.
func (c *Client) CompleteCOD(ctx context.Context, cartId uint, details DeliveryDetails) (models.Order, error) {
	var result struct {
		Order models.Order `json:"order"`
	}
	if err := details.validate(); err != nil {
		return result.Order, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"cartId":          cartId,
			"deliveryAddress": details.Address,
			"deliveryType":    details.Type,
			"deliverySlot":    details.Slot,
			"discountCode":    details.DiscountCode,
		}).
		Post("/orders")
	if err != nil {
		return result.Order, &OrderError{Message: "order request failed"}
	}
	if resp.IsError() {
		return result.Order, c.mapError(resp)
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return result.Order, &OrderError{Message: "invalid order response"}
	}
	return result.Order, nil
}
