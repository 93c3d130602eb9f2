package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/observability"
	"memecoin-creator/internal/storage"
)

// EventRecorder accepts validation events for storage.
type EventRecorder interface {
	// Record enqueues e without blocking. It reports false if e was dropped.
	Record(e *domain.ValidationEvent) bool
}

// RecorderOptions configures Recorder.
type RecorderOptions struct {
	Store         storage.ValidationEventStore
	Metrics       *observability.Metrics // Default: observability.DefaultMetrics
	Logger        *zap.Logger            // Default: no-op
	QueueSize     int                    // Default: 1024
	BatchSize     int                    // Default: 100
	FlushInterval time.Duration          // Default: 2s
	FlushTimeout  time.Duration          // Default: 5s - per batch write
}

// Recorder buffers validation events and writes them to the event store in
// batches, when a batch fills up or on every flush interval.
// Validation never waits on storage: a full queue drops the event.
type Recorder struct {
	store         storage.ValidationEventStore
	metrics       *observability.Metrics
	logger        *zap.Logger
	queue         chan *domain.ValidationEvent
	batchSize     int
	flushInterval time.Duration
	flushTimeout  time.Duration
}

// NewRecorder creates a Recorder. Run must be started for events to be written.
func NewRecorder(opts RecorderOptions) *Recorder {
	r := &Recorder{
		store:         opts.Store,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
		flushTimeout:  opts.FlushTimeout,
	}
	if r.metrics == nil {
		r.metrics = observability.DefaultMetrics
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.batchSize <= 0 {
		r.batchSize = 100
	}
	if r.flushInterval <= 0 {
		r.flushInterval = 2 * time.Second
	}
	if r.flushTimeout <= 0 {
		r.flushTimeout = 5 * time.Second
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	r.queue = make(chan *domain.ValidationEvent, queueSize)
	return r
}

// Record enqueues e without blocking.
func (r *Recorder) Record(e *domain.ValidationEvent) bool {
	select {
	case r.queue <- e:
		r.metrics.EventsQueued.Inc()
		r.metrics.EventQueueDepth.Set(float64(len(r.queue)))
		return true
	default:
		r.metrics.EventsDropped.Inc()
		return false
	}
}

// Run writes queued events until ctx is cancelled, then flushes whatever is
// still queued and returns.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]*domain.ValidationEvent, 0, r.batchSize)

	r.logger.Info("event recorder started",
		zap.Int("batch_size", r.batchSize),
		zap.Duration("flush_interval", r.flushInterval))

	for {
		select {
		case <-ctx.Done():
			batch = r.drain(batch)
			r.flush(batch)
			r.logger.Info("event recorder stopped")
			return nil

		case e := <-r.queue:
			batch = append(batch, e)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

// drain moves every queued event into batch.
func (r *Recorder) drain(batch []*domain.ValidationEvent) []*domain.ValidationEvent {
	for {
		select {
		case e := <-r.queue:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

// flush writes batch with its own timeout so shutdown can still persist it.
func (r *Recorder) flush(batch []*domain.ValidationEvent) {
	r.metrics.EventQueueDepth.Set(float64(len(r.queue)))
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.flushTimeout)
	defer cancel()

	start := time.Now()
	err := r.store.InsertBulk(ctx, batch)
	r.metrics.RecordDBQuery("events", "insert_bulk", time.Since(start), err)
	if err != nil {
		r.metrics.EventFlushErrors.Inc()
		r.logger.Warn("failed to write validation events",
			zap.Int("count", len(batch)),
			zap.Error(err))
		return
	}
	r.metrics.EventsFlushed.Add(float64(len(batch)))
}
