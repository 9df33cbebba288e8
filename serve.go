package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"waitlist-rank-system/handlers"
	"waitlist-rank-system/metrics"
	"waitlist-rank-system/middleware"
	"waitlist-rank-system/services"
	"waitlist-rank-system/utils"
	"waitlist-rank-system/workers"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the waitlist HTTP API (default)",
		RunE:  serveRun,
	}
}

func serveRun(cmd *cobra.Command, args []string) error {
	cfg := rt.cfg
	logger := rt.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase()
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer closeDatabase(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &metrics.Metrics{}
	m.Register(registry)

	cutoffs, err := cfg.BonusCutoffs()
	if err != nil {
		return err
	}
	clock := clockwork.NewRealClock()

	waitlist := services.NewWaitlistService(db, clock, services.NewEarlyBonusSchedule(cutoffs), logger)
	waitlist.Metrics = m
	contributions := services.NewContributionService(db, clock, logger)
	contributions.Metrics = m
	snapshots := services.NewSnapshotService(db, clock, logger)
	snapshots.Metrics = m
	releaseOutputs, err := attachSnapshotOutputs(ctx, snapshots)
	defer releaseOutputs()
	if err != nil {
		logger.Error("failed to set up snapshot outputs", "error", err)
		return err
	}
	stream := services.NewLeaderboardStream(waitlist, logger)

	scheduler, err := services.NewSnapshotScheduler(snapshots, clock, logger)
	if err != nil {
		return err
	}
	times, err := cfg.SnapshotTimes()
	if err != nil {
		return err
	}
	scheduled, err := scheduler.Schedule(times)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown failed", "error", err)
		}
	}()

	workers.NewScoreAuditWorker(db, cfg.ScoreAuditInterval, logger, m).Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:               programName,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.ReviewerHeader,
		MaxAge:       86400,
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.SetupWaitlistRoutes(app, waitlist, snapshots, stream, cfg.LeaderboardLimit)
	handlers.SetupReferralRoutes(app, waitlist)
	handlers.SetupContributionRoutes(app, waitlist, contributions)
	handlers.SetupAdminRoutes(app, waitlist, contributions, snapshots)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	logger.Info("server running",
		"port", cfg.Port,
		"origins", cfg.AllowedOrigins,
		"scheduled_snapshots", scheduled,
		"board", snapshots.Board != nil,
		"archive", snapshots.Archiver != nil,
	)

	select {
	case err := <-listenErr:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", "error", err)
	}
	return nil
}

func newSnapshotBoard() (*services.RedisSnapshotBoard, error) {
	if rt.cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(rt.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return services.NewRedisSnapshotBoard(redis.NewClient(opts)), nil
}

func newSnapshotArchive(ctx context.Context) (*utils.R2Archive, error) {
	if !rt.cfg.R2Enabled() {
		return nil, nil
	}
	archive, err := utils.NewR2Archive(ctx,
		rt.cfg.R2AccountID,
		rt.cfg.R2AccessKeyID,
		rt.cfg.R2AccessKeySecret,
		rt.cfg.R2BucketName,
	)
	if err != nil {
		return nil, err
	}
	return archive, nil
}
