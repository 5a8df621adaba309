package logger

import (
	"context"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/config"
)

func TestModuleProvidesLogger(t *testing.T) {
	var resolved *zap.Logger
	app := fx.New(
		fx.Supply(&config.Config{Env: "development"}),
		Module,
		fx.Populate(&resolved),
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx app failed: %v", err)
	}
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := app.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if resolved == nil {
		t.Fatal("expected logger to be populated")
	}
}
