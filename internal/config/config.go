package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"PriceBox/internal/chart"
	"PriceBox/internal/export"
	"PriceBox/internal/loader"
	"PriceBox/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		Path     string         `yaml:"path"`
		Encoding string         `yaml:"encoding"`
		Columns  loader.Columns `yaml:"columns"`
	} `yaml:"data"`
	Chart struct {
		chart.Options `yaml:",inline"`
		DefaultStart  string `yaml:"default_start"`
		DefaultEnd    string `yaml:"default_end"`
	} `yaml:"chart"`
	Web struct {
		ListenAddr string `yaml:"listen_addr"`
		PublicURL  string `yaml:"public_url"`
	} `yaml:"web"`
	Archive struct {
		Cron      string   `yaml:"cron"`
		Dir       string   `yaml:"dir"`
		Formats   []string `yaml:"formats"`
		BatchSize int      `yaml:"batch_size"`
	} `yaml:"archive"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Chart options are seeded so explicit zeros (tick_angle: 0) survive decoding.
	cfg.Chart.Options = chart.DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("DATA_ENCODING"); v != "" {
		cfg.Data.Encoding = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.Web.PublicURL = v
	}
	if v := os.Getenv("ARCHIVE_CRON"); v != "" {
		cfg.Archive.Cron = v
	}
	if v := os.Getenv("ARCHIVE_DIR"); v != "" {
		cfg.Archive.Dir = v
	}
	if v := os.Getenv("ARCHIVE_FORMATS"); v != "" {
		cfg.Archive.Formats = splitList(v)
	}
	if v := os.Getenv("ARCHIVE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Archive.BatchSize = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Data.Path == "" {
		c.Data.Path = "./mt4镑日历史数据.csv"
	}
	if c.Data.Encoding == "" {
		c.Data.Encoding = "gbk"
	}
	cols, def := &c.Data.Columns, loader.DefaultColumns
	setDefault(&cols.Date, def.Date)
	setDefault(&cols.Time, def.Time)
	setDefault(&cols.Open, def.Open)
	setDefault(&cols.High, def.High)
	setDefault(&cols.Low, def.Low)
	setDefault(&cols.Close, def.Close)

	opts, defOpts := &c.Chart.Options, chart.DefaultOptions()
	setDefault(&opts.Instrument, defOpts.Instrument)
	setDefault(&opts.XTitle, defOpts.XTitle)
	setDefault(&opts.YTitle, defOpts.YTitle)
	setDefault(&opts.UpColor, defOpts.UpColor)
	setDefault(&opts.DownColor, defOpts.DownColor)
	setDefault(&opts.FontFamily, defOpts.FontFamily)
	setDefault(&opts.FontColor, defOpts.FontColor)
	if opts.Width == 0 {
		opts.Width = defOpts.Width
	}
	if opts.Height == 0 {
		opts.Height = defOpts.Height
	}
	if opts.FontSize == 0 {
		opts.FontSize = defOpts.FontSize
	}
	if c.Chart.DefaultStart == "" {
		c.Chart.DefaultStart = "00:00"
	}
	if c.Chart.DefaultEnd == "" {
		c.Chart.DefaultEnd = "23:55"
	}

	if c.Web.ListenAddr == "" {
		c.Web.ListenAddr = ":8501"
	}
	if c.Archive.Cron == "" {
		c.Archive.Cron = "0 30 18 * * *"
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = "data/archive"
	}
	if len(c.Archive.Formats) == 0 {
		c.Archive.Formats = []string{"html", "png", "json"}
	}
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = 5
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/pricebox.db"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Path) == "" {
		return fmt.Errorf("data.path is required")
	}
	if _, err := loader.LookupEncoding(c.Data.Encoding); err != nil {
		return fmt.Errorf("data.encoding: %w", err)
	}
	if _, err := model.ParseClock(c.Chart.DefaultStart); err != nil {
		return fmt.Errorf("chart.default_start: %w", err)
	}
	if _, err := model.ParseClock(c.Chart.DefaultEnd); err != nil {
		return fmt.Errorf("chart.default_end: %w", err)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be positive")
	}
	for _, f := range c.Archive.Formats {
		if export.NewSaver(f, "") == nil {
			return fmt.Errorf("archive.formats: unsupported format %q (use: %s)", f, strings.Join(export.Formats, ", "))
		}
	}
	if c.Archive.BatchSize <= 0 {
		return fmt.Errorf("archive.batch_size must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// DefaultWindow returns the parsed default start and end times.
// Call Validate first.
func (c *Config) DefaultWindow() (start, end model.Clock) {
	return model.MustClock(c.Chart.DefaultStart), model.MustClock(c.Chart.DefaultEnd)
}

// TelegramEnabled reports whether bot credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
