package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/activity"
	"github.com/KboyVillahermosa/HikeWise/internal/auth"
	"github.com/KboyVillahermosa/HikeWise/internal/config"
	"github.com/KboyVillahermosa/HikeWise/internal/live"
	"github.com/KboyVillahermosa/HikeWise/internal/stream"
	"github.com/KboyVillahermosa/HikeWise/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App       *fiber.App
	Cfg       config.Config
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Stream    *stream.Hub
	Store     activity.Store
	Publisher activity.Publisher
	Live      *live.Manager
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	log := slog.Default()
	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient, log),
	}
	s.Store = selectStore(cfg, db, redisClient, log)
	if len(cfg.KafkaBrokers) > 0 {
		s.Publisher = activity.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	s.Live = live.NewManager(s.Store, s.Publisher, s.Stream, trackingOptions(cfg, log), log)
	s.Live.SetTickInterval(cfg.LiveTickInterval)

	registerRoutes(s)
	return s
}

// Close releases the hub subscription and flushes the event publisher.
func (s *Server) Close() error {
	var errs []error
	if err := s.Stream.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), s.Cfg.JWTSecret)
	live.RegisterRoutes(s.App.Group("/tracking"), s.Live, jwtMiddleware)
	activity.RegisterRoutes(s.App.Group("/activities"), s.Store, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware, live.ViewerGuard(s.Live))
}

// selectStore honours ACTIVITY_STORE when its backend is connected and falls
// back to memory otherwise.
func selectStore(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, log *slog.Logger) activity.Store {
	switch {
	case cfg.ActivityStore == "postgres" && db != nil:
		store := activity.NewPostgresStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Migrate(ctx); err != nil {
			log.Error("activities table not ready", "error", err)
		}
		return store
	case cfg.ActivityStore == "redis" && redisClient != nil:
		return activity.NewRedisStore(redisClient)
	}
	if cfg.ActivityStore != "" && cfg.ActivityStore != "memory" {
		log.Warn("activity store unavailable, keeping records in memory", "store", cfg.ActivityStore)
	}
	return activity.NewMemoryStore()
}

func trackingOptions(cfg config.Config, log *slog.Logger) tracking.Options {
	mode, err := tracking.ParseAccuracyMode(cfg.AccuracyPolicy)
	if err != nil {
		log.Warn("unknown accuracy policy, accepting all samples", "policy", cfg.AccuracyPolicy)
	}
	opts := tracking.Options{
		MinMovementMeters: cfg.MinMovementMeters,
		StaleAfter:        cfg.StaleAfter,
		Accuracy:          tracking.AccuracyPolicy{Mode: mode, MaxAccuracyMeters: cfg.MaxAccuracyMeters},
		Logger:            log,
	}
	if window := cfg.ElevationWindow; window >= 3 {
		opts.NewSmoother = func() tracking.AltitudeSmoother { return tracking.NewMedianSmoother(window) }
	}
	return opts
}
