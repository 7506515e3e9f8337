package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
	PaymentMethodCOD  = "cod"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"
)

// VerificationCodeTTL is how long a COD verification code stays valid before
// the buyer has to regenerate it.
const VerificationCodeTTL = 30 * time.Minute

type Order struct {
	gorm.Model
	BuyerID         int           `json:"buyerId"`
	Items           []OrderItem   `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     float64       `json:"totalAmount"`
	Discount        float64       `json:"discount"`
	DiscountCode    string        `json:"discountCode,omitempty"`
	PaymentMethod   string        `json:"paymentMethod"`
	PaymentStatus   string        `json:"paymentStatus"`
	OrderStatus     OrderStatus   `json:"orderStatus"`
	StatusHistory   []StatusEvent `json:"statusHistory" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryType    string        `json:"deliveryType"`
	DeliveryAddress string        `json:"deliveryAddress"`
	DeliverySlot    *time.Time    `json:"deliverySlot,omitempty"`

	// Gateway order id doubles as the idempotency key for payment callbacks:
	// a duplicate callback for the same gateway order finds this row instead
	// of creating a second order.
	PaymentOrderID string         `json:"paymentOrderId,omitempty" gorm:"uniqueIndex;default:null"`
	PaymentID      string         `json:"paymentId,omitempty"`
	PaymentDetails datatypes.JSON `json:"paymentDetails,omitempty"`

	VerificationCode   string     `json:"verificationCode,omitempty"`
	CodeIssuedAt       *time.Time `json:"codeIssuedAt,omitempty"`
	DeliveryVerified   bool       `json:"deliveryVerified"`
	DeliveryVerifiedAt *time.Time `json:"deliveryVerifiedAt,omitempty"`
}

type OrderItem struct {
	gorm.Model
	OrderID      int     `json:"orderId"`
	ProductId    int     `json:"productId"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	SourceFarmID int     `json:"sourceFarmId"`
}

// StatusEvent is one append-only entry of an order's status history.
type StatusEvent struct {
	gorm.Model
	OrderID   uint            `json:"orderId"`
	Status    OrderStatus     `json:"status"`
	Cause     TransitionCause `json:"cause,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// PayableAmount is the amount actually charged, never negative.
func (o *Order) PayableAmount() float64 {
	payable := o.TotalAmount - o.Discount
	if payable < 0 {
		return 0
	}
	return payable
}

func (o *Order) RequiresVerification() bool {
	return o.PaymentMethod == PaymentMethodCOD
}

// IssueVerificationCode binds the given code to a COD order. Issuing is a
// one-shot operation at order creation; a second call fails rather than
// silently replacing the code.
func (o *Order) IssueVerificationCode(code string, now time.Time) error {
	if !o.RequiresVerification() {
		return ErrNoVerificationRequired
	}
	if o.VerificationCode != "" {
		return ErrCodeAlreadyIssued
	}
	issuedAt := now
	o.VerificationCode = code
	o.CodeIssuedAt = &issuedAt
	return nil
}

// VerifyDelivery checks a supplied code at hand-off. On success it marks the
// verification done, settles COD payment and fires the delivered transition.
// Verification succeeds at most once per order.
func (o *Order) VerifyDelivery(suppliedCode string, now time.Time) error {
	if !o.RequiresVerification() {
		return ErrNoVerificationRequired
	}
	if o.DeliveryVerified {
		return ErrAlreadyVerified
	}
	if o.OrderStatus != StatusReady && o.OrderStatus != StatusOutForDelivery {
		return ErrNotVerifiableState
	}
	if o.VerificationCode == "" || o.VerificationCode != suppliedCode {
		return ErrCodeMismatch
	}
	if o.CodeIssuedAt != nil && now.Sub(*o.CodeIssuedAt) > VerificationCodeTTL {
		return ErrCodeExpired
	}

	verifiedAt := now
	o.DeliveryVerified = true
	o.DeliveryVerifiedAt = &verifiedAt
	o.PaymentStatus = PaymentStatusPaid
	return o.Transition(StatusDelivered, CauseDeliveryVerified, now)
}

// RegenerateVerificationCode replaces a lost code with a fresh one. The old
// code stops validating immediately. Not allowed once the order is verified,
// and only while the order is moving toward hand-off: processing, ready or
// out for delivery.
func (o *Order) RegenerateVerificationCode(code string, now time.Time) error {
	if !o.RequiresVerification() {
		return ErrNoVerificationRequired
	}
	if o.DeliveryVerified {
		return ErrAlreadyVerified
	}
	switch o.OrderStatus {
	case StatusProcessing, StatusReady, StatusOutForDelivery:
	default:
		return ErrNotVerifiableState
	}
	issuedAt := now
	o.VerificationCode = code
	o.CodeIssuedAt = &issuedAt
	return nil
}
