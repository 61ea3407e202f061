package assessment

import (
	"context"
	"fmt"

	"github.com/riskwatch/platform/pkg/common/config"
	"github.com/riskwatch/platform/pkg/common/database"
	"github.com/riskwatch/platform/pkg/common/kafka"
	"github.com/riskwatch/platform/pkg/common/logger"
)

// Setup builds a Service with the optional store, cache and publisher enabled
// by cfg. The returned close func releases whatever was opened.
func Setup(ctx context.Context, cfg *config.Config, source PatientSource) (*Service, func(), error) {
	opts := []ServiceOption{
		WithDefaults(cfg.FetchDefaultLimit, cfg.FetchDefaultMaxPages),
		WithRetention(cfg.AssessmentRetention),
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.AssessmentStoreEnabled {
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening assessment store: %w", err)
		}
		closers = append(closers, func() {
			if err := database.ClosePostgres(db); err != nil {
				logger.Log.WithError(err).Warn("failed to close postgres")
			}
		})
		repo := NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("migrating assessment store: %w", err)
		}
		opts = append(opts, WithStore(repo))
	}

	if cfg.AssessmentCacheEnabled {
		rdb, err := database.OpenRedis(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening assessment cache: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, WithCache(NewCache(rdb, cfg.AssessmentCacheTTL)))
	}

	if cfg.AssessmentEventsEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.AssessmentResultTopic)
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				logger.Log.WithError(err).Warn("failed to close kafka producer")
			}
		})
		opts = append(opts, WithPublisher(producer))
	}

	logger.Log.WithFields(map[string]interface{}{
		"store":  cfg.AssessmentStoreEnabled,
		"cache":  cfg.AssessmentCacheEnabled,
		"events": cfg.AssessmentEventsEnabled,
	}).Info("assessment service configured")

	return NewService(source, opts...), closeAll, nil
}
