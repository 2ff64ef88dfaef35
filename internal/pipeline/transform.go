package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/geohash-etl/internal/domain"
	"github.com/couchcryptid/geohash-etl/internal/observability"
)

// GeohashTransformer implements Transformer by parsing a weather row,
// attaching its geohash and serializing it for the sink.
type GeohashTransformer struct {
	precision int
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewTransformer creates a GeohashTransformer computing hashes of the given
// length. The precision is validated by config.Load; an invalid value makes
// every non-NULL row fail.
func NewTransformer(precision int, metrics *observability.Metrics, logger *slog.Logger) *GeohashTransformer {
	return &GeohashTransformer{
		precision: precision,
		metrics:   metrics,
		logger:    logger,
	}
}

func (t *GeohashTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	event, err = domain.EnrichWithGeohash(event, t.precision)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.metrics.GeohashResults.WithLabelValues(event.GeohashStatus).Inc()

	if event.GeohashStatus == domain.GeohashUnparseable {
		t.logger.Debug("coordinates not numeric, emitting sentinel",
			"event_id", event.ID,
			"lat", event.Lat.Value,
			"lng", event.Lng.Value,
		)
	}

	return domain.SerializeWeatherEvent(event)
}
