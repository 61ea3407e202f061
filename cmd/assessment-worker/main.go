package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskwatch/platform/pkg/assessment"
	"github.com/riskwatch/platform/pkg/common/config"
	"github.com/riskwatch/platform/pkg/common/kafka"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/patientapi"
)

func main() {
	logger.Init("assessment-worker")
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load configuration")
	}

	client, err := patientapi.New(patientapi.ConfigFrom(cfg))
	if err != nil {
		logger.Log.WithError(err).Fatal("patient API client not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Results always go back out on the result topic.
	cfg.AssessmentEventsEnabled = true
	svc, closeDeps, err := assessment.Setup(ctx, cfg, client)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to set up assessment service")
	}
	defer closeDeps()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.AssessmentRequestTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	done := make(chan error, 1)
	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"topic":    cfg.AssessmentRequestTopic,
			"group_id": cfg.KafkaGroupID,
		}).Info("Assessment worker started")
		done <- consumer.Consume(ctx, svc.HandleEvent)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Log.Info("Shutting down assessment worker...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("Consumer stopped")
		}
	}

	logger.Log.Info("Assessment worker stopped")
}
