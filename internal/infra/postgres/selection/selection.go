package infra_postgres_selection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	"github.com/jmoiron/sqlx"
)

const schema = `
	CREATE TABLE IF NOT EXISTS selections (
		id           UUID PRIMARY KEY,
		room_code    TEXT NOT NULL,
		mode         TEXT NOT NULL,
		restaurant   TEXT NOT NULL,
		submitter    TEXT NOT NULL,
		participants INT NOT NULL,
		decided_at   TIMESTAMPTZ NOT NULL
	)
`

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type selectionDTO struct {
	ID           uuid.UUID `db:"id"`
	RoomCode     string    `db:"room_code"`
	Mode         string    `db:"mode"`
	Restaurant   string    `db:"restaurant"`
	Submitter    string    `db:"submitter"`
	Participants int       `db:"participants"`
	DecidedAt    time.Time `db:"decided_at"`
}

func (d *Driver) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schema)
	return err
}

func (d *Driver) Insert(ctx context.Context, rec model.SelectionRecord) error {
	query := `
		INSERT INTO selections (id, room_code, mode, restaurant, submitter, participants, decided_at)
		VALUES (:id, :room_code, :mode, :restaurant, :submitter, :participants, :decided_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, selectionDTO{
		ID:           rec.ID,
		RoomCode:     string(rec.RoomCode),
		Mode:         string(rec.Mode),
		Restaurant:   rec.Restaurant,
		Submitter:    string(rec.Submitter),
		Participants: rec.Participants,
		DecidedAt:    rec.DecidedAt,
	})
	return err
}

func (d *Driver) Recent(ctx context.Context, limit int) ([]model.SelectionRecord, error) {
	var rows []selectionDTO

	query := `
		SELECT id, room_code, mode, restaurant, submitter, participants, decided_at
		FROM selections
		ORDER BY decided_at DESC
		LIMIT $1
	`

	if err := d.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	records := make([]model.SelectionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.SelectionRecord{
			ID:           row.ID,
			RoomCode:     model.RoomCode(row.RoomCode),
			Mode:         model.GameMode(row.Mode),
			Restaurant:   row.Restaurant,
			Submitter:    model.ConnID(row.Submitter),
			Participants: row.Participants,
			DecidedAt:    row.DecidedAt,
		})
	}
	return records, nil
}
