package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/venuehub/venuehub/internal/config"
	"github.com/venuehub/venuehub/internal/database"
	"github.com/venuehub/venuehub/internal/feed"
	"github.com/venuehub/venuehub/internal/handler"
	"github.com/venuehub/venuehub/internal/middleware"
	"github.com/venuehub/venuehub/internal/queue"
	"github.com/venuehub/venuehub/internal/repository"
	"github.com/venuehub/venuehub/internal/router"
	"github.com/venuehub/venuehub/internal/service"
	"github.com/venuehub/venuehub/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg := config.Load()
	feedCfg := config.LoadFeedConfig()
	rlCfg := config.LoadRateLimitConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.MySQL)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()
	users := repository.NewUserRepo(db)
	if err := users.EnsureSchema(ctx); err != nil {
		log.Fatalf("mysql: %v", err)
	}

	mongoClient, mongoDB, err := database.OpenMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, "sess", cfg.SessionTTL)
	} else {
		log.Printf("session: using in-memory store")
		store = session.NewMemoryStore(cfg.SessionTTL)
	}
	sessions := session.NewManager(store, session.NewCookies(session.CookieOptions{
		Name:   cfg.SessionCookieName,
		Secret: []byte(cfg.SessionSecret),
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProd(),
	}))

	feedOpts := feed.Options{VenuesURL: feedCfg.VenuesURL, EventsURL: feedCfg.EventsURL, CacheTTL: feedCfg.CacheTTL}
	if feedCfg.CacheEnabled && rdb != nil {
		feedOpts.Cache = feed.NewRedisCache(rdb, feedCfg.CachePrefix)
	}
	pipeline := feed.NewService(feed.NewFetcher(feedCfg.Timeout), feedOpts)

	var notifier handler.FavoritesNotifier
	if cfg.AMQPURL != "" {
		notifier = service.NewPublisher(cfg.AMQPURL)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.FavoritesLogDir)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("favorites-consumer: stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORS(cfg.AllowedOrigins, cfg.AllowedOriginSuffixes))

	router.RegisterStatic(e, cfg.PublicDir)
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.API{
		Sessions:  sessions,
		Auth:      handler.NewAuthHandler(users, sessions, cfg.BcryptCost),
		Events:    handler.NewEventsHandler(pipeline),
		Favorites: handler.NewFavoritesHandler(repository.NewLocationRepo(mongoDB), notifier),
		RateLimit: rlCfg,
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
