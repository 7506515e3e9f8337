package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	CartID       int     `json:"cartId"`
	ProductId    int     `json:"productId"`
	ProductName  string  `json:"productName"`
	UnitPrice    float64 `json:"unitPrice"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	SourceFarmID int     `json:"sourceFarmId"`
}

type Cart struct {
	gorm.Model
	UserID int        `json:"userId"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// Discount codes honoured at checkout. Discounts are capped so a generous
// code can never push the payable amount below zero on small carts.
const maxDiscount = 500

var discountRates = map[string]float64{
	"WELCOME10": 0.10,
	"FARM20":    0.20,
}

// Totals computes the cart subtotal and the discount granted by the given
// code. Unknown codes grant nothing.
func (c *Cart) Totals(discountCode string) (total, discount float64) {
	for _, item := range c.Items {
		total += item.UnitPrice * item.Quantity
	}
	if rate, ok := discountRates[discountCode]; ok {
		discount = total * rate
		if discount > maxDiscount {
			discount = maxDiscount
		}
	}
	return total, discount
}
