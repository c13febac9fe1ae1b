package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pasarku/pasarku/internal/application"
	"github.com/pasarku/pasarku/internal/interface/middleware"
	"github.com/pasarku/pasarku/pkg/response"
	"github.com/pasarku/pasarku/pkg/validation"
)

type ProductHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.CatalogService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

// Price is a pointer so an explicit 0 passes "required"; positivity is
// deliberately not enforced at this layer.
type createProductRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
}

// List GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"products": products})
}

// Create POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Create(c.Request.Context(), uid, application.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"success": true, "product": p})
}

// Update PUT /api/products/:id shallow-merges whatever fields the
// caller sends onto the stored record.
func (h *ProductHandler) Update(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload")
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	merged, err := h.Svc.Update(c.Request.Context(), uid, c.Param("id"), patch)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"success": true, "product": merged})
}

// Delete DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"success": true})
}

// Search GET /api/products/search?q=
func (h *ProductHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Err(c, http.StatusBadRequest, "q is required")
		return
	}
	size := 10
	if s := c.Query("size"); s != "" {
		if n, err := parsePositiveInt(s); err == nil {
			size = n
		}
	}
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"products": hits})
}

// UploadImage POST /api/products/:id/image (multipart field "image")
func (h *ProductHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.Err(c, http.StatusBadRequest, "image file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	defer func() { _ = src.Close() }()

	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.UploadImage(c.Request.Context(), uid, c.Param("id"), src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"success": true, "image": url})
}
