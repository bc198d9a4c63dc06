package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/Image-Moderator/config"
	kafkactrl "github.com/andreyxaxa/Image-Moderator/internal/controller/kafka"
	"github.com/andreyxaxa/Image-Moderator/internal/controller/restapi"
	feedworker "github.com/andreyxaxa/Image-Moderator/internal/controller/worker/feed"
	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	infrakafka "github.com/andreyxaxa/Image-Moderator/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Moderator/internal/infrastructure/mail"
	"github.com/andreyxaxa/Image-Moderator/internal/infrastructure/router"
	"github.com/andreyxaxa/Image-Moderator/internal/repo/persistent"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/compensate"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/ingest"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/metadata"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/notify"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/review"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase/updates"
	"github.com/andreyxaxa/Image-Moderator/pkg/httpserver"
	"github.com/andreyxaxa/Image-Moderator/pkg/kafka/consumer"
	"github.com/andreyxaxa/Image-Moderator/pkg/kafka/producer"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/andreyxaxa/Image-Moderator/pkg/postgres"
	"github.com/andreyxaxa/Image-Moderator/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	objectRepo := persistent.NewObjectRepo(s3c)
	recordRepo := persistent.NewRecordRepo(pg)
	feedRepo := persistent.NewFeedRepo(pg)

	// Mail
	mailSender, err := mail.New(
		cfg.Mail.Host,
		cfg.Mail.Port,
		cfg.Mail.Username,
		cfg.Mail.Password,
		cfg.Mail.From,
		cfg.Mail.To,
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - mail.New: %w", err))
	}

	// Kafka Producer (shared by router, queue dispatcher and publish API)
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}
	eventProducer := infrakafka.NewEventProducer(kafkaProducer)

	// Use-Case
	ingestUseCase := ingest.New(objectRepo, recordRepo, l)
	compensateUseCase := compensate.New(objectRepo, l)
	metadataUseCase := metadata.New(recordRepo, l)
	reviewUseCase := review.New(recordRepo, l)
	notifyUseCase := notify.New(mailSender, l)
	updatesUseCase := updates.New(eventProducer, recordRepo, cfg.Kafka.IngressTopic, l)

	// Router: the subscription fabric connecting the ingress topic to the
	// queue and the two push consumers
	routerConsumer, err := newConsumer(ctx, cfg, "router", cfg.Kafka.IngressTopic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newConsumer(router): %w", err))
	}

	subscriptions := []router.Subscription{
		{
			// plain upload-queue path: no filter, receives every message
			Name:  "image-process-queue",
			Topic: cfg.Kafka.QueueTopic,
		},
		{
			Name:  "image-metadata",
			Topic: cfg.Kafka.MetadataTopic,
			FilterPolicy: map[string][]string{
				dto.AttrMetadataType: {"Caption", "Date", "name"},
			},
		},
		{
			Name:  "image-status",
			Topic: cfg.Kafka.StatusTopic,
			FilterPolicy: map[string][]string{
				dto.AttrMessageType: {dto.MessageTypeStatusUpdate},
			},
		},
	}

	eventRouter := router.New(
		infrakafka.NewEventConsumer(routerConsumer),
		eventProducer,
		subscriptions,
		l,
		cfg.Router.DeliverTimeout,
		cfg.Router.CommitTimeout,
	)

	// Queue Controller (validator)
	queueConsumer, err := newConsumer(ctx, cfg, "validator", cfg.Kafka.QueueTopic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newConsumer(validator): %w", err))
	}

	queueController := kafkactrl.New(
		ingestUseCase,
		infrakafka.NewEventConsumer(queueConsumer),
		eventProducer,
		l,
		cfg.Kafka.QueueTopic,
		cfg.Kafka.DLQTopic,
		cfg.Queue.BatchSize,
		cfg.Queue.BatchWait,
		cfg.Queue.MaxDeliveries,
		cfg.Queue.ProcessTimeout,
		cfg.Queue.CommitTimeout,
	)

	// Push Controllers (compensator + mergers)
	pushControllers := make([]*kafkactrl.PushController, 0, 3)

	for _, pc := range []struct {
		name    string
		topic   string
		handler kafkactrl.MessageHandler
	}{
		{"compensator", cfg.Kafka.DLQTopic, kafkactrl.NewCompensateHandler(compensateUseCase)},
		{"metadata-merger", cfg.Kafka.MetadataTopic, kafkactrl.NewMetadataHandler(metadataUseCase)},
		{"status-merger", cfg.Kafka.StatusTopic, kafkactrl.NewStatusHandler(reviewUseCase)},
	} {
		pushConsumer, err := newConsumer(ctx, cfg, pc.name, pc.topic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - newConsumer(%s): %w", pc.name, err))
		}

		pushControllers = append(pushControllers, kafkactrl.NewPush(
			pc.name,
			pc.handler,
			infrakafka.NewEventConsumer(pushConsumer),
			l,
			cfg.Push.ProcessTimeout,
			cfg.Push.CommitTimeout,
		))
	}

	// Feed Relay Worker (notifier)
	feedRelay := feedworker.New(
		feedRepo,
		notifyUseCase,
		l,
		cfg.FeedRelay.PollInterval,
		cfg.FeedRelay.CleanupInterval,
		cfg.FeedRelay.ProcessBatchTimeout,
		cfg.FeedRelay.BatchSize,
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, updatesUseCase, l)

	// Start Components
	err = feedRelay.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - feedRelay.Start: %w", err))
	}
	err = eventRouter.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - eventRouter.Start: %w", err))
	}
	err = queueController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - queueController.Start: %w", err))
	}
	for _, pc := range pushControllers {
		err = pc.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - pushController.Start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	rtShutdownCtx, rtShutdownCancel := context.WithTimeout(ctx, cfg.Router.ShutdownTimeout)
	defer rtShutdownCancel()
	err = eventRouter.Shutdown(rtShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - eventRouter.Shutdown: %w", err))
	}

	qcShutdownCtx, qcShutdownCancel := context.WithTimeout(ctx, cfg.Queue.ShutdownTimeout)
	defer qcShutdownCancel()
	err = queueController.Shutdown(qcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - queueController.Shutdown: %w", err))
	}

	for _, pc := range pushControllers {
		pcShutdownCtx, pcShutdownCancel := context.WithTimeout(ctx, cfg.Push.ShutdownTimeout)
		err = pc.Shutdown(pcShutdownCtx)
		pcShutdownCancel()
		if err != nil {
			l.Error(fmt.Errorf("app - Run - pushController.Shutdown: %w", err))
		}
	}

	frShutdownCtx, frShutdownCancel := context.WithTimeout(ctx, cfg.FeedRelay.ShutdownTimeout)
	defer frShutdownCancel()
	err = feedRelay.Shutdown(frShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - feedRelay.Shutdown: %w", err))
	}

	err = eventProducer.Close()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - eventProducer.Close: %w", err))
	}
}

func newConsumer(ctx context.Context, cfg *config.Config, name, topic string) (*consumer.Consumer, error) {
	return consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-"+name, topic)
}
