package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
	"github.com/pasarku/pasarku/pkg/apperr"
	"github.com/pasarku/pasarku/pkg/helpers"
	"github.com/pasarku/pasarku/pkg/mailer"
)

// OrderService creates orders and maintains the per-user order indices.
type OrderService struct {
	KV          kv.Store
	Pub         *helpers.RabbitPublisher
	Logger      *logrus.Logger
	MailEnabled bool
}

// Purchase checks availability, writes the order and appends the order
// id to both parties' indices. The availability check and the writes
// are separate operations: concurrent purchases of the same product can
// all succeed, and availability is never decremented. Orders are final
// ("completed") and never deleted.
func (s *OrderService) Purchase(ctx context.Context, buyerID, productID string, quantity int64) (*entity.Order, error) {
	if quantity < 1 {
		quantity = 1
	}

	var p entity.Product
	ok, err := s.KV.Get(ctx, ProductKey(productID), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	if p.Status != entity.ProductAvailable {
		return nil, apperr.Validation("product is not available")
	}

	var buyer entity.User
	ok, err = s.KV.Get(ctx, UserKey(buyerID), &buyer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}

	o := &entity.Order{
		ID:           uuid.NewString(),
		ProductID:    p.ID,
		ProductTitle: p.Title,
		ProductImage: p.Image,
		Price:        p.Price,
		BuyerID:      buyer.ID,
		BuyerName:    buyer.Name,
		SellerID:     p.SellerID,
		SellerName:   p.SellerName,
		Quantity:     quantity,
		TotalPrice:   p.Price.Mul(decimal.NewFromInt(quantity)),
		Status:       entity.OrderCompleted,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.KV.Set(ctx, OrderKey(o.ID), o); err != nil {
		return nil, err
	}
	if err := s.appendOrder(ctx, o.BuyerID, o.ID); err != nil {
		return nil, err
	}
	if err := s.appendOrder(ctx, o.SellerID, o.ID); err != nil {
		return nil, err
	}

	s.sendOrderEmails(ctx, o)
	return o, nil
}

// ListForUser resolves the caller's order index. Index entries whose
// record is missing are skipped.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]entity.Order, error) {
	var ids []string
	if _, err := s.KV.Get(ctx, UserOrdersKey(userID), &ids); err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = OrderKey(id)
	}
	return kv.FetchAll[entity.Order](ctx, s.KV, keys)
}

func (s *OrderService) appendOrder(ctx context.Context, userID, orderID string) error {
	return s.KV.Update(ctx, UserOrdersKey(userID), func(cur []byte) (any, error) {
		return kv.AppendID(cur, orderID)
	})
}

func (s *OrderService) sendOrderEmails(ctx context.Context, o *entity.Order) {
	if !s.MailEnabled {
		return
	}
	data := map[string]any{
		"OrderID":      o.ID,
		"ProductTitle": o.ProductTitle,
		"BuyerName":    o.BuyerName,
		"SellerName":   o.SellerName,
		"Quantity":     o.Quantity,
		"Price":        o.Price.String(),
		"TotalPrice":   o.TotalPrice.String(),
	}

	var buyer, seller entity.User
	if ok, err := s.KV.Get(ctx, UserKey(o.BuyerID), &buyer); err == nil && ok {
		publishEmail(ctx, s.Pub, s.Logger, mailer.EmailJob{
			To: buyer.Email, Template: mailer.TemplateOrderReceipt, Data: data,
		})
	}
	if ok, err := s.KV.Get(ctx, UserKey(o.SellerID), &seller); err == nil && ok {
		publishEmail(ctx, s.Pub, s.Logger, mailer.EmailJob{
			To: seller.Email, Template: mailer.TemplateOrderSale, Data: data,
		})
	}
}
