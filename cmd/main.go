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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/config"
	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/container"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/cache"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/messaging"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/search"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/middleware"
	"github.com/oksasatya/go-hexagonal-users/internal/router"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
	"github.com/oksasatya/go-hexagonal-users/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	storage, err := container.OpenStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer storage.Close()

	// Redis backs sessions, rate limits and the user cache
	rdb, err := helpers.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		helpers.LogError(logger, "redis unavailable; sessions and cache disabled", err, logrus.Fields{"addr": cfg.RedisAddr})
	} else {
		defer func() { _ = rdb.Close() }()
	}

	users := storage.Users
	if rdb != nil && cfg.UserCacheTTL > 0 {
		users = cache.NewUserRepository(users, rdb, cfg.UserCacheTTL, logger)
	}

	events, closeEvents := newEventPublisher(cfg, logger)
	defer closeEvents()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))
	container.SetUserRepository(users)
	container.SetCredentialRepository(storage.Credentials)
	container.SetEvents(events)
	if index := newUserIndex(cfg, logger); index != nil {
		container.SetUserIndex(index)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Location", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}

	reg := router.NewRegistry(r)
	reg.AddCheck("storage", storage.Ping)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		helpers.LogInfo(logger, "server starting", logrus.Fields{"port": cfg.Port, "driver": storage.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// newEventPublisher publishes to RabbitMQ, falling back to logging events
// when the broker is not configured or unreachable.
func newEventPublisher(cfg *config.Config, logger *logrus.Logger) (application.EventPublishing, func()) {
	if cfg.RabbitMQURL == "" {
		return messaging.NewLogPublisher(logger), func() {}
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQEventsQueue, messaging.UserEventsBinding)
	if err != nil {
		helpers.LogError(logger, "rabbitmq unavailable; events will only be logged", err, nil)
		return messaging.NewLogPublisher(logger), func() {}
	}
	return messaging.NewEventPublisher(pub, logger), pub.Close
}

// newUserIndex returns nil when Elasticsearch is not configured.
func newUserIndex(cfg *config.Config, logger *logrus.Logger) *search.UserIndexer {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := helpers.NewESClient(helpers.ESOptions{Addrs: addrs, Username: cfg.ElasticsearchUser, Password: cfg.ElasticsearchPass})
	if err != nil {
		helpers.LogError(logger, "elasticsearch client init failed; search disabled", err, nil)
		return nil
	}
	return search.NewUserIndexer(es, cfg.ESUsersIndex, logger)
}

