package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderCompleted = "completed"

// Order records a purchase. Product and party names are denormalized
// snapshots taken at purchase time; orders are never mutated or deleted.
type Order struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	ProductTitle string          `json:"productTitle"`
	ProductImage string          `json:"productImage"`
	Price        decimal.Decimal `json:"price"`
	BuyerID      string          `json:"buyerId"`
	BuyerName    string          `json:"buyerName"`
	SellerID     string          `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	Quantity     int64           `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}
