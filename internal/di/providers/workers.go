package providers

import (
	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/events"
	"github.com/custodylog/custodylog-server/internal/logger"
	"github.com/custodylog/custodylog-server/internal/ratelimit"
)

// PublisherHandle wraps the entry event publisher with shutdown capability.
type PublisherHandle struct {
	events.Publisher
}

// Shutdown implements do.Shutdownable. Pending Kafka batches are flushed.
func (h *PublisherHandle) Shutdown() error {
	return h.Close()
}

// ProvidePublisher provides the entry event publisher. Without brokers
// events are dropped.
func ProvidePublisher(i do.Injector) (*PublisherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if len(cfg.Events.Brokers) == 0 {
		log.Info("Entry events disabled (no Kafka brokers configured)")
		return &PublisherHandle{Publisher: events.Noop{}}, nil
	}

	log.Info("Entry events enabled",
		"brokers", cfg.Events.Brokers,
		"topic", cfg.Events.Topic,
	)

	return &PublisherHandle{Publisher: events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)}, nil
}

// ExportLimiterHandle throttles exports per user. The embedded limiter
// already implements do.Shutdownable.
type ExportLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// ProvideExportLimiter provides the per-user export rate limiter.
func ProvideExportLimiter(i do.Injector) (*ExportLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &ExportLimiterHandle{KeyedRateLimiter: ratelimit.PerMinute(cfg.Export.RatePerMinute)}, nil
}
