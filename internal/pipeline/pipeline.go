package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/geohash-etl/internal/domain"
	"github.com/couchcryptid/geohash-etl/internal/geohash"
	"github.com/couchcryptid/geohash-etl/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into an output event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline runs the extract, geohash, load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Ready reports whether at least one batch has been loaded.
func (p *Pipeline) Ready() bool { return p.ready.Load() }

// CheckReadiness implements the readiness probe.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.Ready() {
		return errors.New("pipeline has not loaded any messages yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
// Extract and load failures are retried with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := backoff{next: initialBackoff}
	for ctx.Err() == nil {
		if err := p.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("batch failed, backing off", "error", err, "backoff", b.next)
			if !b.wait(ctx) {
				break
			}
			continue
		}
		b.reset()
	}

	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// runOnce extracts, transforms and loads a single batch. A returned error
// means the batch was not loaded and its offsets were not committed.
func (p *Pipeline) runOnce(ctx context.Context) error {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	out := make([]domain.OutputEvent, 0, len(batch))
	kept := make([]domain.RawEvent, 0, len(batch))
	for _, raw := range batch {
		ev, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.drop(ctx, raw, err)
			continue
		}
		out = append(out, ev)
		kept = append(kept, raw)
	}

	if len(out) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		return err
	}
	p.metrics.MessagesProduced.Add(float64(len(out)))

	for _, raw := range kept {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return nil
}

// drop records a message that cannot be transformed and commits past it so
// it is not redelivered.
func (p *Pipeline) drop(ctx context.Context, raw domain.RawEvent, err error) {
	reason := errorReason(err)
	p.logger.Warn("transform failed, skipping message",
		"error", err,
		"reason", reason,
		"topic", raw.Topic,
		"partition", raw.Partition,
		"offset", raw.Offset,
	)
	p.metrics.TransformErrors.WithLabelValues(reason).Inc()
	p.commit(ctx, raw)
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// errorReason buckets a transform error for transform_errors_total.
func errorReason(err error) string {
	switch {
	case errors.Is(err, geohash.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, geohash.ErrInvalidPrecision):
		return "precision"
	case errors.Is(err, domain.ErrDecode):
		return "decode"
	default:
		return "other"
	}
}

// backoff doubles from initialBackoff up to maxBackoff.
type backoff struct {
	next time.Duration
}

func (b *backoff) reset() { b.next = initialBackoff }

// wait sleeps for the current delay and advances it. It returns false if ctx
// ends first.
func (b *backoff) wait(ctx context.Context) bool {
	timer := time.NewTimer(b.next)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	b.next = min(b.next*2, maxBackoff)
	return true
}
