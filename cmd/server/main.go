// Command server runs the team leaderboard API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/team-leaderboard/internal/api/rest"
	"github.com/aimd54/team-leaderboard/internal/cache"
	"github.com/aimd54/team-leaderboard/internal/config"
	"github.com/aimd54/team-leaderboard/internal/live"
	"github.com/aimd54/team-leaderboard/internal/mattermost"
	"github.com/aimd54/team-leaderboard/internal/repository"
	"github.com/aimd54/team-leaderboard/internal/seed"
	"github.com/aimd54/team-leaderboard/internal/service/aggregation"
	"github.com/aimd54/team-leaderboard/internal/service/leaderboard"
	"github.com/aimd54/team-leaderboard/internal/service/ranking"
	"github.com/aimd54/team-leaderboard/internal/service/scheduler"
	"github.com/aimd54/team-leaderboard/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	seedPath := flag.String("seed", "", "load teams and scores from a YAML file before serving")
	flag.Parse()

	if err := run(*configPath, *seedPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, seedPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return err
	}
	log := logger.Get()

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Migrate(log); err != nil {
		return err
	}

	var c cache.Cache = cache.Noop{}
	if cfg.Database.Redis.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()
		c = redisCache
		log.Info().Str("addr", cfg.Database.Redis.Addr()).Msg("Connected to Redis")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(cfg.Server.AllowedOrigins, log.Named("live"))
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	chat := mattermost.NewClient(&cfg.Mattermost, log.Named("mattermost"))
	var notifier leaderboard.Notifier
	if chat.Enabled() {
		notifier = chat
	}

	svc := leaderboard.NewService(
		repository.NewStore(db),
		ranking.NewEngine(log.Named("ranking")),
		aggregation.NewService(log.Named("aggregation")),
		c,
		hub,
		notifier,
		cfg.Leaderboard,
		log.Named("leaderboard"),
	)
	defer svc.Wait()

	if seedPath != "" {
		if _, err := seed.LoadFile(ctx, seedPath, svc, log.Named("seed")); err != nil {
			return err
		}
	}

	sched := scheduler.NewService(&cfg.Scheduler, svc, chat, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	health := map[string]rest.HealthChecker{"database": db}
	if cfg.Database.Redis.Enabled {
		health["cache"] = c
	}
	handler := rest.NewHandler(svc, hub, health, cfg.Leaderboard, log.Named("api"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           rest.NewRouter(handler, cfg.Server.AllowedOrigins, log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Prometheus.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Prometheus.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Prometheus.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go serve(metricsServer, "metrics", log)
	}

	go serve(server, "api", log)

	log.Info().
		Int("port", cfg.Server.Port).
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Driver).
		Bool("redis", cfg.Database.Redis.Enabled).
		Bool("mattermost", chat.Enabled()).
		Msg("Team leaderboard started")

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down API server")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down metrics server")
		}
	}
	<-hubDone

	return nil
}

func serve(server *http.Server, name string, log *logger.Logger) {
	log.Info().Str("server", name).Str("addr", server.Addr).Msg("Listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Str("server", name).Msg("Server failed")
	}
}
