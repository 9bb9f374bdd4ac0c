package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/bakehouse/internal/app"
	"github.com/polkiloo/bakehouse/internal/config"
	"github.com/polkiloo/bakehouse/internal/logger"
	"github.com/polkiloo/bakehouse/internal/metrics"
	"github.com/polkiloo/bakehouse/internal/pkg/auth"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/server/http/handlers"
	"github.com/polkiloo/bakehouse/internal/server/http/router"
	"github.com/polkiloo/bakehouse/internal/session"
	"github.com/polkiloo/bakehouse/internal/storage/postgres"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		session.Module,
		usecase.Module,
		realtime.Module,
		fx.Provide(func(f *app.BakeryFacade) handlers.BakeryFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
