package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasarku/pasarku/internal/container"
	handlers "github.com/pasarku/pasarku/internal/interface/http"
	"github.com/pasarku/pasarku/internal/interface/middleware"
	"github.com/pasarku/pasarku/pkg/helpers"
)

// AdminModule wires the admin listings behind the role gate.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.JWT))
	admin.Use(middleware.RequireAdmin(container.GetKV()))
	admin.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.GET("/orders", m.Handler.ListOrders)
	}
}
