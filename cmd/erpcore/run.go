package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return nil
}

// once starts app, runs fn against the populated graph and stops it again.
func once(ctx context.Context, app *fx.App, fn func(context.Context) error) (err error) {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	defer func() {
		if stopErr := app.Stop(context.Background()); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop application: %w", stopErr)
		}
	}()
	return fn(ctx)
}
