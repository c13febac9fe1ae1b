package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasarku/pasarku/internal/container"
	handlers "github.com/pasarku/pasarku/internal/interface/http"
	"github.com/pasarku/pasarku/internal/interface/middleware"
	"github.com/pasarku/pasarku/pkg/helpers"
)

// OrderModule wires purchases and the caller's order list, all protected.
type OrderModule struct {
	Handler *handlers.OrderHandler
	JWT     *helpers.JWTManager
}

func NewOrderModule(h *handlers.OrderHandler, jwt *helpers.JWTManager) *OrderModule {
	return &OrderModule{Handler: h, JWT: jwt}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/orders", m.Handler.Purchase)
		auth.GET("/orders", m.Handler.List)
	}
}
