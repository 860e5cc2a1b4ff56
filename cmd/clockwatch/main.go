package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tnicklin/coarseclock/clock"
	"github.com/tnicklin/coarseclock/config"
	"github.com/tnicklin/coarseclock/logger"
)

func main() {
	params, err := build()
	if err != nil {
		log.Fatal(err)
	}

	if err = run(params); err != nil {
		log.Fatal(err)
	}
}

func build() (runParams, error) {
	cfg, err := config.LoadWithDefaults("config/config.yaml", "config/local.yaml")
	if err != nil {
		return runParams{}, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return runParams{}, fmt.Errorf("initialize logger: %w", err)
	}

	var (
		src clock.Source
		ntp *clock.NTPSource
	)
	switch strings.ToLower(cfg.Clock.Source) {
	case "", "system":
		src = clock.System()
	case "monotonic":
		src = clock.Monotonic()
	case "ntp":
		ntp = clock.NewNTP(
			clock.WithServer(cfg.Clock.NTP.Server),
			clock.WithInterval(cfg.Clock.NTP.SyncInterval),
			clock.WithTimeout(cfg.Clock.NTP.Timeout),
			clock.WithLogger(appLogger),
		)
		src = ntp
	default:
		return runParams{}, fmt.Errorf("unknown clock source %q", cfg.Clock.Source)
	}

	return runParams{
		Config: cfg,
		Logger: appLogger,
		Source: src,
		NTP:    ntp,
	}, nil
}

type runParams struct {
	Config *config.AppConfig
	Logger logger.Logger
	Source clock.Source
	NTP    *clock.NTPSource
}

// run starts all components and runs the application until shutdown.
func run(p runParams) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer p.Logger.Sync()

	if p.NTP != nil {
		if err := p.NTP.Start(ctx); err != nil {
			return fmt.Errorf("start ntp source: %w", err)
		}
		defer p.NTP.Stop()
	}

	var metrics *clock.Metrics
	if addr := p.Config.Metrics.Addr; addr != "" {
		metrics = clock.NewMetrics(nil)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				p.Logger.ErrorW("metrics endpoint", "error", err)
			}
		}()
		p.Logger.InfoW("serving metrics", "addr", addr)
	}

	sched := clock.NewScheduler(clock.SchedulerParams{
		Logger:  p.Logger,
		Metrics: metrics,
	})
	defer sched.Close()

	cached := clock.New(p.Source, clock.WithScheduler(sched))
	defer cached.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			raw := p.Source.Now()
			now := cached.Now()
			p.Logger.InfoW("tick",
				"cached", now.Format(time.RFC3339),
				"staleness", raw.Sub(now),
				"steady", cached.Steady(),
			)
		case <-stop:
			p.Logger.InfoW("shutting down")
			return nil
		}
	}
}
