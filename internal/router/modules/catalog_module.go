package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasarku/pasarku/internal/container"
	handlers "github.com/pasarku/pasarku/internal/interface/http"
	"github.com/pasarku/pasarku/internal/interface/middleware"
	"github.com/pasarku/pasarku/pkg/helpers"
)

// CatalogModule wires the product endpoints.
// Public: GET /api/products, GET /api/products/search
// Protected: POST /api/products, PUT/DELETE /api/products/:id, POST /api/products/:id/image
type CatalogModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
}

func NewCatalogModule(h *handlers.ProductHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Handler: h, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	listLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	searchLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/products", listLimiter, m.Handler.List)
	rg.GET("/products/search", searchLimiter, m.Handler.Search)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/products", m.Handler.Create)
		auth.PUT("/products/:id", m.Handler.Update)
		auth.DELETE("/products/:id", m.Handler.Delete)
		auth.POST("/products/:id/image", m.Handler.UploadImage)
	}
}
