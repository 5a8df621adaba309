package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/erpcore/internal/app"
	"github.com/polkiloo/erpcore/internal/broker"
	"github.com/polkiloo/erpcore/internal/cache"
	"github.com/polkiloo/erpcore/internal/config"
	"github.com/polkiloo/erpcore/internal/logger"
	"github.com/polkiloo/erpcore/internal/pkg/auth"
	"github.com/polkiloo/erpcore/internal/server/http/handlers"
	"github.com/polkiloo/erpcore/internal/server/http/router"
	"github.com/polkiloo/erpcore/internal/storage/postgres"
	"github.com/polkiloo/erpcore/internal/telemetry"
	"github.com/polkiloo/erpcore/internal/usecase"
)

func base() []fx.Option {
	return []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		broker.Module,
		cache.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
	}
}

// Module wires the HTTP server, payroll scheduler and everything beneath them.
func Module(opts ...fx.Option) fx.Option {
	modules := append(base(),
		fx.Provide(func(f *app.ERPFacade) handlers.ERPFacade { return f }),
		router.Module,
		app.Module,
	)
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Core wires the facade without transports or workers, for one-shot commands.
func Core(opts ...fx.Option) fx.Option {
	modules := append(base(), app.FacadeModule)
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
