package broker

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/config"
)

// Module provides the event publisher.
var Module = fx.Options(
	fx.Provide(newPublisher),
)

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka brokers not configured, events disabled")
		return NopPublisher{}
	}
	p := NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Named("broker"))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return p.Close()
		},
	})
	return p
}
