package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasarku/pasarku/internal/application"
	"github.com/pasarku/pasarku/internal/domain/entity"
	"github.com/pasarku/pasarku/internal/infrastructure/kv"
	"github.com/pasarku/pasarku/internal/infrastructure/memory"
	"github.com/pasarku/pasarku/internal/interface/middleware"
	"github.com/pasarku/pasarku/pkg/helpers"
	"github.com/pasarku/pasarku/pkg/validation"
)

var initOnce sync.Once

// newTestServer wires the full route tree against in-process stores.
func newTestServer(t *testing.T) (*gin.Engine, *kv.MemoryStore) {
	t.Helper()
	initOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	store := kv.NewMemoryStore()
	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour)

	authSvc := &application.AuthService{
		Identities: memory.NewIdentityRepository(),
		KV:         store,
		JWT:        jwt,
	}
	catalogSvc := &application.CatalogService{KV: store}
	orderSvc := &application.OrderService{KV: store}
	adminSvc := &application.AdminService{KV: store}

	authH := NewAuthHandler(authSvc, nil, "localhost", false)
	productH := NewProductHandler(catalogSvc, nil)
	orderH := NewOrderHandler(orderSvc, nil)
	adminH := NewAdminHandler(adminSvc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/signup", authH.Signup)
	api.POST("/login", authH.Login)
	api.POST("/refresh", authH.Refresh)
	api.GET("/products", productH.List)
	api.GET("/products/search", productH.Search)

	auth := api.Group("/")
	auth.Use(middleware.Auth(jwt))
	auth.POST("/logout", authH.Logout)
	auth.GET("/user", authH.CurrentUser)
	auth.POST("/products", productH.Create)
	auth.PUT("/products/:id", productH.Update)
	auth.DELETE("/products/:id", productH.Delete)
	auth.POST("/orders", orderH.Purchase)
	auth.GET("/orders", orderH.List)

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(jwt))
	admin.Use(middleware.RequireAdmin(store))
	admin.GET("/users", adminH.ListUsers)
	admin.GET("/orders", adminH.ListOrders)

	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

// signup registers a user and returns its id and access token.
func signup(t *testing.T, r *gin.Engine, email, name, role string) (string, string) {
	t.Helper()
	body := gin.H{"email": email, "password": "password123", "name": name}
	if role != "" {
		body["role"] = role
	}
	w, resp := doJSON(t, r, http.MethodPost, "/api/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := resp["user"].(map[string]any)
	return user["id"].(string), resp["accessToken"].(string)
}

func TestSignupLoginFlow(t *testing.T) {
	r, _ := newTestServer(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/signup", "", gin.H{
		"email": "alice@example.com", "password": "password123", "name": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["accessToken"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])

	w, resp = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := resp["accessToken"].(string)

	w, resp = doJSON(t, r, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", resp["user"].(map[string]any)["name"])
}

func TestSignupValidation(t *testing.T) {
	r, _ := newTestServer(t)

	// short password
	w, resp := doJSON(t, r, http.MethodPost, "/api/signup", "", gin.H{
		"email": "a@example.com", "password": "short", "name": "A",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp, "error")

	// bad email
	w, resp = doJSON(t, r, http.MethodPost, "/api/signup", "", gin.H{
		"email": "not-an-email", "password": "password123", "name": "A",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp, "error")

	// bad role
	w, resp = doJSON(t, r, http.MethodPost, "/api/signup", "", gin.H{
		"email": "a@example.com", "password": "password123", "name": "A", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp, "error")
}

func TestSignupDuplicateEmailWire(t *testing.T) {
	r, _ := newTestServer(t)
	signup(t, r, "dup@example.com", "Dup", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/signup", "", gin.H{
		"email": "dup@example.com", "password": "password123", "name": "Dup",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already registered", resp["error"])
}

func TestLoginBadCredentials(t *testing.T) {
	r, _ := newTestServer(t)
	signup(t, r, "bob@example.com", "Bob", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"email": "bob@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", resp["error"])
}

func TestProductCRUDFlow(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := signup(t, r, "seller@example.com", "Sally", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/products", token, gin.H{
		"title": "Lamp", "description": "desk lamp", "price": "9.99", "category": "home",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := resp["product"].(map[string]any)
	id := product["id"].(string)
	assert.Equal(t, "available", product["status"])
	assert.Equal(t, "Sally", product["sellerName"])

	w, resp = doJSON(t, r, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["products"], 1)

	w, resp = doJSON(t, r, http.MethodPut, "/api/products/"+id, token, gin.H{
		"title": "Better Lamp",
	})
	require.Equal(t, http.StatusOK, w.Code)
	merged := resp["product"].(map[string]any)
	assert.Equal(t, "Better Lamp", merged["title"])
	assert.Equal(t, "desk lamp", merged["description"])

	w, _ = doJSON(t, r, http.MethodDelete, "/api/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodDelete, "/api/products/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", resp["error"])
}

func TestCreateProductRequiresAuth(t *testing.T) {
	r, _ := newTestServer(t)
	w, resp := doJSON(t, r, http.MethodPost, "/api/products", "", gin.H{
		"title": "Lamp", "price": "9.99",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, resp, "error")
}

func TestCreateProductMissingPrice(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := signup(t, r, "seller@example.com", "Sally", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/products", token, gin.H{"title": "Lamp"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp, "error")
}

func TestCreateProductZeroPriceAccepted(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := signup(t, r, "seller@example.com", "Sally", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/products", token, gin.H{
		"title": "Freebie", "price": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0", resp["product"].(map[string]any)["price"])
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	r, _ := newTestServer(t)
	_, sellerTok := signup(t, r, "seller@example.com", "Sally", "")
	_, otherTok := signup(t, r, "other@example.com", "Oscar", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/products", sellerTok, gin.H{
		"title": "Lamp", "price": "9.99",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := resp["product"].(map[string]any)["id"].(string)

	w, resp = doJSON(t, r, http.MethodPut, "/api/products/"+id, otherTok, gin.H{"title": "Hacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not allowed to modify this product", resp["error"])
}

func TestPurchaseFlow(t *testing.T) {
	r, _ := newTestServer(t)
	_, sellerTok := signup(t, r, "seller@example.com", "Sally", "")
	_, buyerTok := signup(t, r, "buyer@example.com", "Bob", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/products", sellerTok, gin.H{
		"title": "Lamp", "price": "9.99",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := resp["product"].(map[string]any)["id"].(string)

	w, resp = doJSON(t, r, http.MethodPost, "/api/orders", buyerTok, gin.H{
		"productId": productID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := resp["order"].(map[string]any)
	assert.Equal(t, "completed", order["status"])
	assert.Equal(t, "29.97", order["totalPrice"])
	assert.Equal(t, "Bob", order["buyerName"])

	// both sides see the order
	for _, tok := range []string{buyerTok, sellerTok} {
		w, resp = doJSON(t, r, http.MethodGet, "/api/orders", tok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp["orders"], 1)
	}
}

func TestPurchaseUnauthenticatedCreatesNoOrder(t *testing.T) {
	r, store := newTestServer(t)
	_, sellerTok := signup(t, r, "seller@example.com", "Sally", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/products", sellerTok, gin.H{
		"title": "Lamp", "price": "9.99",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := resp["product"].(map[string]any)["id"].(string)

	w, resp = doJSON(t, r, http.MethodPost, "/api/orders", "", gin.H{"productId": productID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, resp, "error")

	orders, err := kv.List[entity.Order](context.Background(), store, application.OrderPrefix)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPurchaseMissingProductWire(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := signup(t, r, "buyer@example.com", "Bob", "")

	w, resp := doJSON(t, r, http.MethodPost, "/api/orders", token, gin.H{"productId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", resp["error"])
}

func TestAdminEndpoints(t *testing.T) {
	r, _ := newTestServer(t)
	_, adminTok := signup(t, r, "admin@example.com", "Root", "admin")
	_, userTok := signup(t, r, "user@example.com", "Norm", "")

	w, resp := doJSON(t, r, http.MethodGet, "/api/admin/users", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["users"], 2)

	w, resp = doJSON(t, r, http.MethodGet, "/api/admin/orders", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["orders"])

	// role is read from the store, not the token
	w, resp = doJSON(t, r, http.MethodGet, "/api/admin/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin access required", resp["error"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	r, _ := newTestServer(t)
	w, resp := doJSON(t, r, http.MethodGet, "/api/products/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "q is required", resp["error"])
}

func TestRefreshToken(t *testing.T) {
	r, _ := newTestServer(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/signup", "", gin.H{
		"email": "ref@example.com", "password": "password123", "name": "Ref",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	refresh := resp["refreshToken"].(string)

	w, resp = doJSON(t, r, http.MethodPost, "/api/refresh", "", gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp["accessToken"])

	w, resp = doJSON(t, r, http.MethodPost, "/api/refresh", "", gin.H{"refreshToken": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, resp, "error")
}
