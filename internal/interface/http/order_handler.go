package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/internal/application"
	"github.com/pasarku/pasarku/internal/interface/middleware"
	"github.com/pasarku/pasarku/pkg/response"
	"github.com/pasarku/pasarku/pkg/validation"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type purchaseRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"omitempty,min=1"`
}

// Purchase POST /api/orders
func (h *OrderHandler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	o, err := h.Svc.Purchase(c.Request.Context(), uid, req.ProductID, req.Quantity)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"success": true, "order": o})
}

// List GET /api/orders returns the caller's orders, buyer or seller side.
func (h *OrderHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	orders, err := h.Svc.ListForUser(c.Request.Context(), uid)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"orders": orders})
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
