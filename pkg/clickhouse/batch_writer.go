package clickhouse

import (
	"context"
	"sync"
	"time"

	"machina/pkg/logger"
)

// FlushFunc is the function called to flush a batch of items to ClickHouse.
// It receives a batch of items and should perform the actual INSERT.
type FlushFunc func(ctx context.Context, batch []interface{}) error

// BatchWriter accumulates items in memory and flushes them to ClickHouse in
// batches. Single row inserts are inefficient in ClickHouse, so prediction
// history rows go through this writer.
type BatchWriter struct {
	flushFunc FlushFunc
	buffer    []interface{}
	mu        sync.Mutex
	log       *logger.Logger

	maxBatchSize int           // Flush when buffer reaches this size
	maxAge       time.Duration // Flush when oldest item exceeds this age
	tableName    string        // Table name for logging

	lastFlush time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
}

// BatchWriterConfig contains configuration for BatchWriter
type BatchWriterConfig struct {
	FlushFunc    FlushFunc
	TableName    string
	MaxBatchSize int           // Default: 500
	MaxAge       time.Duration // Default: 5s
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(cfg BatchWriterConfig) *BatchWriter {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 500
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 5 * time.Second
	}

	return &BatchWriter{
		flushFunc:    cfg.FlushFunc,
		buffer:       make([]interface{}, 0, cfg.MaxBatchSize),
		maxBatchSize: cfg.MaxBatchSize,
		maxAge:       cfg.MaxAge,
		tableName:    cfg.TableName,
		lastFlush:    time.Now(),
		stopCh:       make(chan struct{}),
		log:          logger.Get().With("component", "batch_writer", "table", cfg.TableName),
	}
}

// Start begins the background flush ticker
func (bw *BatchWriter) Start(ctx context.Context) {
	bw.mu.Lock()
	if bw.running {
		bw.mu.Unlock()
		return
	}
	bw.running = true
	bw.ticker = time.NewTicker(bw.maxAge)
	bw.mu.Unlock()

	bw.wg.Add(1)
	go bw.flushLoop(ctx)

	bw.log.Infof("BatchWriter started (maxBatchSize=%d, maxAge=%v)", bw.maxBatchSize, bw.maxAge)
}

// Add adds an item to the buffer
// If buffer reaches maxBatchSize, it will be flushed immediately
func (bw *BatchWriter) Add(ctx context.Context, item interface{}) error {
	bw.mu.Lock()
	bw.buffer = append(bw.buffer, item)
	shouldFlush := len(bw.buffer) >= bw.maxBatchSize
	bw.mu.Unlock()

	if shouldFlush {
		return bw.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered items to ClickHouse
func (bw *BatchWriter) Flush(ctx context.Context) error {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return nil
	}

	// Take ownership of current buffer and create a new one
	batch := bw.buffer
	bw.buffer = make([]interface{}, 0, bw.maxBatchSize)
	bw.lastFlush = time.Now()
	bw.mu.Unlock()

	// Flush outside of lock to avoid blocking Add() calls
	start := time.Now()
	err := bw.flushFunc(ctx, batch)
	duration := time.Since(start)

	if err != nil {
		bw.log.Errorf("Failed to flush %d items to %s: %v (took %v)",
			len(batch), bw.tableName, err, duration)
		return err
	}

	bw.log.Debugf("Flushed %d items to %s (took %v)", len(batch), bw.tableName, duration)
	return nil
}

// flushLoop runs in background and flushes periodically
func (bw *BatchWriter) flushLoop(ctx context.Context) {
	defer bw.wg.Done()

	for {
		select {
		case <-ctx.Done():
			if err := bw.Flush(context.Background()); err != nil {
				bw.log.Errorf("Final flush failed: %v", err)
			}
			return

		case <-bw.stopCh:
			if err := bw.Flush(context.Background()); err != nil {
				bw.log.Errorf("Final flush failed: %v", err)
			}
			return

		case <-bw.ticker.C:
			if err := bw.Flush(ctx); err != nil {
				bw.log.Errorf("Periodic flush failed: %v", err)
			}
		}
	}
}

// Stop gracefully shuts down the batch writer
// It flushes any remaining items and waits for completion
func (bw *BatchWriter) Stop(ctx context.Context) error {
	bw.mu.Lock()
	if !bw.running {
		bw.mu.Unlock()
		return nil
	}
	bw.running = false
	bw.mu.Unlock()

	if bw.ticker != nil {
		bw.ticker.Stop()
	}
	close(bw.stopCh)

	done := make(chan struct{})
	go func() {
		bw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		bw.log.Info("BatchWriter stopped gracefully")
		return nil
	case <-ctx.Done():
		bw.log.Warn("BatchWriter stop timed out")
		return ctx.Err()
	}
}

// BufferSize returns the current buffer size (for monitoring)
func (bw *BatchWriter) BufferSize() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}
