package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP      HTTP
		Log       Log
		PG        PG
		S3        S3
		Kafka     Kafka
		Mail      Mail
		Router    Router
		Queue     Queue
		Push      Push
		FeedRelay FeedRelay
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS,required"`
		GroupID string   `env:"KAFKA_GROUP_ID,required"`

		IngressTopic  string `env:"KAFKA_INGRESS_TOPIC" envDefault:"image-events"`
		QueueTopic    string `env:"KAFKA_QUEUE_TOPIC" envDefault:"image-process-queue"`
		DLQTopic      string `env:"KAFKA_DLQ_TOPIC" envDefault:"image-process-dlq"`
		MetadataTopic string `env:"KAFKA_METADATA_TOPIC" envDefault:"image-metadata"`
		StatusTopic   string `env:"KAFKA_STATUS_TOPIC" envDefault:"image-status"`
	}

	Mail struct {
		Host     string `env:"MAIL_HOST,required"`
		Port     int    `env:"MAIL_PORT" envDefault:"587"`
		Username string `env:"MAIL_USERNAME"`
		Password string `env:"MAIL_PASSWORD"`
		From     string `env:"MAIL_FROM,required"`
		To       string `env:"MAIL_TO,required"`
	}

	Router struct {
		DeliverTimeout  time.Duration `env:"ROUTER_DELIVER_TIMEOUT" envDefault:"5s"`
		CommitTimeout   time.Duration `env:"ROUTER_COMMIT_TIMEOUT" envDefault:"2s"`
		ShutdownTimeout time.Duration `env:"ROUTER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Queue struct {
		BatchSize       int           `env:"QUEUE_BATCH_SIZE" envDefault:"5"`
		BatchWait       time.Duration `env:"QUEUE_BATCH_WAIT" envDefault:"5s"`
		MaxDeliveries   int           `env:"QUEUE_MAX_DELIVERIES" envDefault:"3"`
		ProcessTimeout  time.Duration `env:"QUEUE_PROCESS_TIMEOUT" envDefault:"15s"`
		CommitTimeout   time.Duration `env:"QUEUE_COMMIT_TIMEOUT" envDefault:"2s"`
		ShutdownTimeout time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Push struct {
		ProcessTimeout  time.Duration `env:"PUSH_PROCESS_TIMEOUT" envDefault:"15s"`
		CommitTimeout   time.Duration `env:"PUSH_COMMIT_TIMEOUT" envDefault:"2s"`
		ShutdownTimeout time.Duration `env:"PUSH_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	FeedRelay struct {
		PollInterval        time.Duration `env:"FEED_RELAY_POLL_INTERVAL" envDefault:"2s"`
		CleanupInterval     time.Duration `env:"FEED_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"FEED_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		BatchSize           int           `env:"FEED_RELAY_BATCH_SIZE" envDefault:"100"`
		ShutdownTimeout     time.Duration `env:"FEED_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
