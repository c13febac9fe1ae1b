package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses. Only "available" products can be purchased.
const (
	ProductAvailable = "available"
)

// Product is a listing created by a seller. SellerName is a snapshot of
// the seller's name at creation time and is not kept in sync.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	SellerID    string          `json:"sellerId"`
	SellerName  string          `json:"sellerName"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}
