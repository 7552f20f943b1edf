package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"machina/internal/domain/efficiency"
	pkgclickhouse "machina/pkg/clickhouse"
	"machina/pkg/errors"
)

const insertQuery = `
	INSERT INTO predictions (
		request_id, timestamp, operation_mode,
		temperature_c, vibration_hz, power_consumption_kw, network_latency_ms,
		packet_loss_pct, defect_rate_pct, production_speed, maintenance_score, error_rate_pct,
		label, label_index, prob_high, prob_low, prob_medium, latency_ms
	)
`

const selectColumns = `
	request_id, timestamp, operation_mode,
	temperature_c, vibration_hz, power_consumption_kw, network_latency_ms,
	packet_loss_pct, defect_rate_pct, production_speed, maintenance_score, error_rate_pct,
	label, label_index, prob_high, prob_low, prob_medium, latency_ms
`

// PredictionRepository implements efficiency.Repository for ClickHouse.
// Writes are batched; history rows are best effort and never on the request
// path's critical section.
type PredictionRepository struct {
	conn   driver.Conn
	writer *pkgclickhouse.BatchWriter
}

// NewPredictionRepository creates a new prediction history repository
func NewPredictionRepository(conn driver.Conn) *PredictionRepository {
	repo := &PredictionRepository{conn: conn}
	repo.writer = pkgclickhouse.NewBatchWriter(pkgclickhouse.BatchWriterConfig{
		FlushFunc: repo.flush,
		TableName: "predictions",
	})
	return repo
}

// Start begins background batch flushing
func (r *PredictionRepository) Start(ctx context.Context) {
	r.writer.Start(ctx)
}

// Stop flushes remaining rows and stops the writer
func (r *PredictionRepository) Stop(ctx context.Context) error {
	return r.writer.Stop(ctx)
}

// Store buffers one prediction for batched insertion
func (r *PredictionRepository) Store(ctx context.Context, record *efficiency.PredictionRecord) error {
	return r.writer.Add(ctx, record)
}

// flush inserts a batch of prediction records
func (r *PredictionRepository) flush(ctx context.Context, batch []interface{}) error {
	prepared, err := r.conn.PrepareBatch(ctx, insertQuery)
	if err != nil {
		return errors.Wrap(err, "failed to prepare predictions batch")
	}

	for _, item := range batch {
		record, ok := item.(*efficiency.PredictionRecord)
		if !ok {
			continue
		}
		if err := prepared.AppendStruct(record); err != nil {
			return errors.Wrap(err, "failed to append prediction record")
		}
	}

	return prepared.Send()
}

// GetRecent retrieves the most recent predictions, newest first
func (r *PredictionRepository) GetRecent(ctx context.Context, limit int) ([]efficiency.PredictionRecord, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM predictions
		ORDER BY timestamp DESC
		LIMIT ?
	`

	var records []efficiency.PredictionRecord
	if err := r.conn.Select(ctx, &records, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to get recent predictions")
	}
	return records, nil
}

// GetHistory retrieves predictions since a given time, newest first
func (r *PredictionRepository) GetHistory(ctx context.Context, since time.Time) ([]efficiency.PredictionRecord, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM predictions
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
	`

	var records []efficiency.PredictionRecord
	if err := r.conn.Select(ctx, &records, query, since); err != nil {
		return nil, errors.Wrap(err, "failed to get prediction history")
	}
	return records, nil
}
