package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/config"
)

// Module provides metrics and starts tracing when a Jaeger endpoint is configured.
var Module = fx.Options(
	fx.Provide(func() *Metrics { return NewMetrics(prometheus.DefaultRegisterer) }),
	fx.Invoke(registerTracer),
)

type tracerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.Logger
}

func registerTracer(p tracerParams) error {
	if p.Config.JaegerEndpoint == "" {
		return nil
	}
	tp, err := InitTracer(context.Background(), ServiceName, p.Config.JaegerEndpoint)
	if err != nil {
		return err
	}
	p.Logger.Info("tracer initialized", zap.String("endpoint", p.Config.JaegerEndpoint))
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}
