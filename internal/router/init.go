package router

import (
	pginfra "github.com/pasarku/pasarku/internal/infrastructure/postgres"

	"github.com/pasarku/pasarku/internal/application"
	"github.com/pasarku/pasarku/internal/container"
	handlers "github.com/pasarku/pasarku/internal/interface/http"
	"github.com/pasarku/pasarku/internal/router/modules"
)

// InitModules builds the application services from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	authSvc := &application.AuthService{
		Identities:  pginfra.NewIdentityRepository(container.GetPGPool()),
		KV:          container.GetKV(),
		JWT:         container.GetJWT(),
		Pub:         container.GetRabbitPub(),
		Logger:      container.GetLogger(),
		MailEnabled: cfg.MailSendEnabled,
	}
	catalogSvc := &application.CatalogService{
		KV:        container.GetKV(),
		ES:        container.GetES(),
		ESIndex:   cfg.ESProductsIndex,
		GCS:       container.GetGCS(),
		GCSBucket: cfg.GCSBucket,
		Logger:    container.GetLogger(),
	}
	orderSvc := &application.OrderService{
		KV:          container.GetKV(),
		Pub:         container.GetRabbitPub(),
		Logger:      container.GetLogger(),
		MailEnabled: cfg.MailSendEnabled,
	}
	adminSvc := &application.AdminService{KV: container.GetKV()}

	logger := container.GetLogger()
	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure), jwt))
	r.Add(modules.NewCatalogModule(handlers.NewProductHandler(catalogSvc, logger), jwt))
	r.Add(modules.NewOrderModule(handlers.NewOrderHandler(orderSvc, logger), jwt))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(adminSvc, logger), jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
