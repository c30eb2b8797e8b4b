package attendance

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Deibyd07/Gestion-de-Eventos-sub005/entity"
)

// PostgresReadModel computes attendance numbers straight from the tickets
// table. It keeps no state of its own, so it can never drift from the
// check-in engine; under heavy load a reader may see a snapshot that is an
// instant stale.
type PostgresReadModel struct {
	db *sqlx.DB
}

func NewPostgresReadModel(database *sqlx.DB) *PostgresReadModel {
	if database == nil {
		panic("db is nil")
	}
	return &PostgresReadModel{db: database}
}

func (r *PostgresReadModel) Stats(ctx context.Context, eventID string) (entity.AttendanceStats, error) {
	var row struct {
		Total     int `db:"total"`
		CheckedIn int `db:"checked_in"`
	}

	err := r.db.GetContext(ctx, &row, `
		SELECT
			count(*) FILTER (WHERE state NOT IN ('void', 'expired')) AS total,
			count(*) FILTER (WHERE state = 'used')                   AS checked_in
		FROM tickets
		WHERE event_id = $1
	`, eventID)
	if err != nil {
		return entity.AttendanceStats{}, fmt.Errorf("could not compute attendance stats: %w", err)
	}

	stats := entity.AttendanceStats{
		EventID:   eventID,
		Total:     row.Total,
		CheckedIn: row.CheckedIn,
		NoShow:    row.Total - row.CheckedIn,
	}
	if stats.Total > 0 {
		stats.Rate = float64(stats.CheckedIn) / float64(stats.Total)
	}

	return stats, nil
}
