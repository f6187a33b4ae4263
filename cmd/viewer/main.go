package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"PriceBox/internal/app"
	"PriceBox/internal/loader"
)

var configFlag = flag.String("config", "", "config file (overrides CONFIG_PATH)")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()
	flag.Parse()
	log.Println("[INFO] PriceBox viewer starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	if *configFlag != "" {
		cfgPath = *configFlag
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, cleanup, err := InitializeApp(ctx, app.ConfigPath(cfgPath))
	if err != nil {
		var le *loader.LoadError
		if errors.As(err, &le) {
			log.Fatalf("[FATAL] %s (%v)", loader.UserMessage(err), err)
		}
		log.Fatalf("[FATAL] init: %v", err)
	}
	defer cleanup()

	if err := a.Scheduler.RegisterAll(a.Config.Archive.Cron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	if a.Config.TelegramEnabled() {
		go a.Notifier.StartPolling(ctx, a.Scheduler.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[INFO] Telegram not configured, notifications disabled")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing archive task now")
		go a.Scheduler.RunArchiveNow()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Server.ListenAndServe(ctx, a.Config.Web.ListenAddr)
	}()

	log.Println("[INFO] PriceBox viewer is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
		if err := <-serveErr; err != nil {
			log.Printf("[WARN] web server shutdown: %v", err)
		}
	case err := <-serveErr:
		log.Printf("[ERROR] web server: %v", err)
		cancel()
	}
	log.Println("[INFO] PriceBox viewer stopped")
}
