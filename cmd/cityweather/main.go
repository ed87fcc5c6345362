package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "cityweather/internal/api/http"
	"cityweather/internal/config"
	"cityweather/internal/history"
	"cityweather/internal/service"
	"cityweather/internal/weather/providers"
)

func main() {
	historyFlag := flag.String("history", "", "history CSV path (overrides config)")
	attributesFlag := flag.String("attributes", "", "city attributes CSV path (overrides config)")
	tailFlag := flag.Int("tail", -1, "show the most recent N history rows after updating")
	skipFetch := flag.Bool("skip-fetch", false, "skip fetching and just show saved history")
	serve := flag.Bool("serve", false, "run the HTTP server instead of the one-shot CLI")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *historyFlag != "" {
		cfg.HistoryPath = *historyFlag
	}
	if *attributesFlag != "" {
		cfg.AttributesPath = *attributesFlag
	}
	if *tailFlag >= 0 {
		cfg.Tail = *tailFlag
	}

	// Shared HTTP client for outbound provider calls; the timeout is the
	// single bound on the remote fetch.
	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout,
	}

	fetcher := providers.NewWttrClient(httpClient, cfg.WttrBaseURL)
	store := history.NewStore(cfg.HistoryPath)
	svc := service.New(fetcher, store, cfg.AttributesPath)

	if *serve {
		runServer(cfg, svc)
		return
	}

	city := flag.Arg(0)
	if !*skipFetch && city == "" {
		fmt.Fprintln(os.Stderr, "usage: cityweather [flags] CITY")
		flag.PrintDefaults()
		os.Exit(2)
	}

	runOnce(cfg, svc, city, *skipFetch)
}

func runOnce(cfg *config.AppConfig, svc *service.Service, city string, skipFetch bool) {
	rows := svc.SavedHistory()

	if !skipFetch {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
		defer cancel()

		report, merged, err := svc.Refresh(ctx, city)
		if err != nil {
			// Fetch and payload problems are shown, not fatal panics.
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rows = merged

		for _, line := range report.Lines() {
			fmt.Println(line)
		}
	} else if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No history found; run without -skip-fetch first.")
		os.Exit(1)
	}

	if cfg.Tail > 0 {
		fmt.Println("\nSaved history tail:")
		for _, row := range history.Tail(rows, cfg.Tail) {
			ts := "unknown"
			if !row.Timestamp.IsZero() {
				ts = row.Timestamp.Format("2006-01-02 15:04")
			}
			fmt.Printf("  %-20s %-16s %-8s %-24s %6.1fC\n",
				row.City, ts, row.Source, row.Description, row.TemperatureC)
		}
	}
}

func runServer(cfg *config.AppConfig, svc *service.Service) {
	app := fiber.New(fiber.Config{
		AppName:               "cityweather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cityweather",
		})
	})

	httpapi.RegisterRoutes(app, svc, cfg.Tail)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
