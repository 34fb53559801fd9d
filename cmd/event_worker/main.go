package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/config"
	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/container"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/messaging"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/notification"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/search"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
	"github.com/oksasatya/go-hexagonal-users/pkg/mailer"
)

// event_worker consumes user events, mails a notification for each and keeps
// the search index in step.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := application.NewUserEventHandler(newNotifier(cfg, logger), newIndex(ctx, cfg, logger), newUserLookup(ctx, cfg, logger), logger)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareTopology(ch, cfg.RabbitMQExchange, cfg.RabbitMQEventsQueue, messaging.UserEventsBinding); err != nil {
		log.Fatalf("declare topology: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQEventsQueue, "exchange": cfg.RabbitMQExchange}).Info("event worker listening")
	if err := messaging.Consume(ctx, msgs, handler, logger); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("consumer stopped")
	}
	logger.Info("event worker stopped")
}

func newNotifier(cfg *config.Config, logger *logrus.Logger) application.NotificationSending {
	if !cfg.MailConfigured() {
		logger.Warn("mail sending disabled; notifications will only be logged")
		return notification.NewLogNotifier(logger)
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	mg.APIBase = cfg.MailgunAPIBase
	return notification.NewEmailNotifier(mg, logger)
}

func newIndex(ctx context.Context, cfg *config.Config, logger *logrus.Logger) application.UserIndexing {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := helpers.NewESClient(helpers.ESOptions{Addrs: addrs, Username: cfg.ElasticsearchUser, Password: cfg.ElasticsearchPass})
	if err != nil {
		helpers.LogError(logger, "elasticsearch client init failed; indexing disabled", err, nil)
		return nil
	}
	idx := search.NewUserIndexer(es, cfg.ESUsersIndex, logger)
	if err := idx.EnsureIndex(ctx); err != nil {
		helpers.LogError(logger, "ensure search index failed", err, logrus.Fields{"index": cfg.ESUsersIndex})
	}
	return idx
}

// newUserLookup resolves recipients for detail changes from the user store.
// The worker runs without it when storage is unreachable.
func newUserLookup(ctx context.Context, cfg *config.Config, logger *logrus.Logger) application.UserDisplay {
	if cfg.DBDriver == config.DriverMemory {
		return nil
	}
	storage, err := container.OpenStorage(ctx, cfg, logger)
	if err != nil {
		helpers.LogError(logger, "user store unavailable; change notifications need the previous email", err, nil)
		return nil
	}
	context.AfterFunc(ctx, storage.Close)
	return application.NewUserService(storage.Users, messaging.NewLogPublisher(logger), nil, logger, cfg.UserEmailDomain)
}
