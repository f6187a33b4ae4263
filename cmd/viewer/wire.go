//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"PriceBox/internal/app"
	"PriceBox/internal/config"
	"PriceBox/internal/model"
	"PriceBox/internal/notifier"
	"PriceBox/internal/scheduler"
	"PriceBox/internal/web"

	"github.com/google/wire"
)

// App holds application dependencies built by Wire.
type App struct {
	Config    *config.Config
	Dataset   *model.Dataset
	Notifier  *notifier.TelegramNotifier
	Scheduler *scheduler.Scheduler
	Server    *web.Server
}

// InitializeApp loads config and the dataset and assembles the viewer.
// Caller must call cleanup when done.
func InitializeApp(ctx context.Context, path app.ConfigPath) (*App, func(), error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideSource,
		app.ProvideMetrics,
		app.ProvideDataset,
		app.ProvideRecorder,
		app.ProvideNotifier,
		app.ProvideSender,
		app.ProvideSchedulerOptions,
		app.ProvideServer,
		scheduler.NewScheduler,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
