package mysql

import (
	"context"
	"database/sql"

	"feedback_gate/internal/domain"
)

// Journal is the optional ops audit of sink delivery outcomes. Append-only,
// metadata only: the payload itself is never retained.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

func (j *Journal) Record(ctx context.Context, rec domain.DeliveryRecord) error {
	_, err := j.db.ExecContext(ctx, insertDeliverySQL,
		string(rec.Type),
		rec.Stars,
		rec.Strategy,
		rec.Status,
		rec.Reason,
	)
	return err
}

// CountByOutcome is a small read path for dashboards and the integration
// test: rows per (strategy, delivered) pair, where delivered means a 2xx/3xx
// status was observed.
func (j *Journal) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, countDeliveriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var strategy string
		var delivered bool
		var n int
		if err := rows.Scan(&strategy, &delivered, &n); err != nil {
			return nil, err
		}
		key := strategy + ":missed"
		if delivered {
			key = strategy + ":delivered"
		}
		out[key] = n
	}
	return out, rows.Err()
}
