package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/config"
	"github.com/polkiloo/erpcore/internal/worker"
)

// FacadeModule provides the ERP facade alone, for graphs without a server.
var FacadeModule = fx.Provide(NewERPFacade)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	FacadeModule,
	fx.Provide(
		newHTTPServer,
		newPayrollScheduler,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type schedulerParams struct {
	fx.In

	Facade *ERPFacade
	Config *config.Config
	Logger *zap.Logger
}

func newPayrollScheduler(p schedulerParams) *worker.PayrollScheduler {
	return worker.NewPayrollScheduler(
		p.Facade,
		p.Config.PayrollInterval,
		p.Config.WorkerPoolSize,
		p.Logger.Named("payroll-scheduler"),
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *zap.Logger
	Server     *http.Server
	Scheduler  *worker.PayrollScheduler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting erpcore", zap.String("addr", p.Server.Addr))
			// fx cancels the start context once OnStart returns.
			p.Scheduler.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", zap.Error(err))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Scheduler.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("erpcore stopped")
			return nil
		},
	})
}
