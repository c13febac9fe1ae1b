package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
	"github.com/pasarku/pasarku/pkg/apperr"
)

func setupOrderTest(t *testing.T) (*OrderService, *kv.MemoryStore, *entity.Product) {
	t.Helper()
	store := kv.NewMemoryStore()
	seedUser(t, store, "seller-1", "Sally", entity.RoleUser)
	seedUser(t, store, "buyer-1", "Bob", entity.RoleUser)

	catalog := &CatalogService{KV: store}
	p, err := catalog.Create(context.Background(), "seller-1", CreateProductInput{
		Title: "Lamp",
		Price: decimal.RequireFromString("9.99"),
	})
	require.NoError(t, err)

	return &OrderService{KV: store}, store, p
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setupOrderTest(t)

	o, err := svc.Purchase(ctx, "buyer-1", p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, o.Status)
	assert.Equal(t, int64(3), o.Quantity)
	assert.Equal(t, "29.97", o.TotalPrice.String())
	assert.Equal(t, "Bob", o.BuyerName)
	assert.Equal(t, "Sally", o.SellerName)
	assert.Equal(t, "Lamp", o.ProductTitle)

	// the order lands in both parties' indices
	var ids []string
	found, err := store.Get(ctx, UserOrdersKey("buyer-1"), &ids)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{o.ID}, ids)

	found, err = store.Get(ctx, UserOrdersKey("seller-1"), &ids)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{o.ID}, ids)
}

func TestPurchaseDefaultsQuantityToOne(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setupOrderTest(t)

	o, err := svc.Purchase(ctx, "buyer-1", p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.Quantity)
	assert.Equal(t, "9.99", o.TotalPrice.String())
}

func TestPurchaseMissingProduct(t *testing.T) {
	svc, _, _ := setupOrderTest(t)
	_, err := svc.Purchase(context.Background(), "buyer-1", "no-such-product", 1)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestPurchaseUnavailableProduct(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setupOrderTest(t)

	p.Status = "sold_out"
	require.NoError(t, store.Set(ctx, ProductKey(p.ID), p))

	_, err := svc.Purchase(ctx, "buyer-1", p.ID, 1)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestPurchaseUnknownBuyer(t *testing.T) {
	svc, _, p := setupOrderTest(t)
	_, err := svc.Purchase(context.Background(), "ghost", p.ID, 1)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestRepeatedPurchasesAllSucceed(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setupOrderTest(t)

	// availability is never decremented
	for i := 0; i < 5; i++ {
		_, err := svc.Purchase(ctx, "buyer-1", p.ID, 1)
		require.NoError(t, err)
	}
	orders, err := svc.ListForUser(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, orders, 5)
}

func TestListForUserSkipsMissingRecords(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setupOrderTest(t)

	o, err := svc.Purchase(ctx, "buyer-1", p.ID, 1)
	require.NoError(t, err)

	// a dangling index entry is skipped, not an error
	require.NoError(t, store.Update(ctx, UserOrdersKey("buyer-1"), func(cur []byte) (any, error) {
		return kv.AppendID(cur, "vanished-order")
	}))

	orders, err := svc.ListForUser(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
}

func TestListForUserEmpty(t *testing.T) {
	svc, _, _ := setupOrderTest(t)
	orders, err := svc.ListForUser(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
