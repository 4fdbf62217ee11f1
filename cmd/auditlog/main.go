// Command auditlog consumes console audit events from RabbitMQ and appends
// one line per event to logs/parking-audit.log (or AUDIT_LOG_PATH).
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/parking-console/internal/config"
	"github.com/iliyamo/parking-console/internal/logger"
	"github.com/iliyamo/parking-console/internal/queue"
)

func main() {
	_ = godotenv.Load()
	log := logger.InitLogger(os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(config.AMQPURL(), os.Getenv("AUDIT_LOG_PATH"), log)
	log.WithField("queue", queue.AuditQueue).WithField("file", c.LogPath).Info("consuming audit events")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithErr(err).Fatal("audit consumer stopped")
	}
}
