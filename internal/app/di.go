package app

import (
	"fmt"
	"log"

	"PriceBox/internal/config"
	"PriceBox/internal/loader"
	"PriceBox/internal/metrics"
	"PriceBox/internal/model"
	"PriceBox/internal/notifier"
	"PriceBox/internal/recorder"
	"PriceBox/internal/scheduler"
	"PriceBox/internal/web"
)

// ConfigPath is the YAML config location.
type ConfigPath string

// ProvideConfig loads and validates config (for Wire).
func ProvideConfig(path ConfigPath) (*config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// ProvideSource creates the CSV source named by config (for Wire).
func ProvideSource(cfg *config.Config) loader.Source {
	return loader.NewCSVSource(cfg.Data.Path, cfg.Data.Encoding, cfg.Data.Columns)
}

// ProvideMetrics creates the metrics registry (for Wire).
func ProvideMetrics() *metrics.Metrics {
	return metrics.NewMetrics()
}

// ProvideDataset loads the dataset once (for Wire). The error wraps
// loader.ErrMissingSource when the file is absent.
func ProvideDataset(src loader.Source, m *metrics.Metrics) (*model.Dataset, error) {
	ds, err := loader.LoadDataset(src)
	if err != nil {
		return nil, err
	}
	m.DatasetRecords.Set(float64(ds.Len()))
	m.DatasetDates.Set(float64(len(ds.Dates())))
	return ds, nil
}

// ProvideRecorder opens the SQLite history, falling back to in-memory history (for Wire).
// The cleanup closes the database.
func ProvideRecorder(cfg *config.Config) (recorder.Recorder, func()) {
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, keeping history in memory: %v", err)
		return recorder.NewNoopRecorder(), func() {}
	}
	return sr, func() { sr.Close() }
}

// ProvideNotifier creates the Telegram notifier; it may be unconfigured (for Wire).
func ProvideNotifier(cfg *config.Config) *notifier.TelegramNotifier {
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

// ProvideSender returns tn as the scheduler's sender, or nil when Telegram is off (for Wire).
func ProvideSender(tn *notifier.TelegramNotifier) scheduler.Sender {
	if !tn.Enabled() {
		return nil
	}
	return tn
}

// ProvideSchedulerOptions maps config onto the archive job (for Wire).
func ProvideSchedulerOptions(cfg *config.Config) scheduler.Options {
	start, end := cfg.DefaultWindow()
	return scheduler.Options{
		Dir:       cfg.Archive.Dir,
		Formats:   cfg.Archive.Formats,
		BatchSize: cfg.Archive.BatchSize,
		Start:     start,
		End:       end,
		Chart:     cfg.Chart.Options,
		PublicURL: cfg.Web.PublicURL,
	}
}

// ProvideServer creates the web viewer (for Wire).
func ProvideServer(cfg *config.Config, ds *model.Dataset, m *metrics.Metrics) *web.Server {
	start, end := cfg.DefaultWindow()
	return web.NewServer(ds, cfg.Chart.Options, start, end, m)
}
