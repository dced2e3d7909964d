package infra_postgres_matchlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ashchv/grubswipe/internal/model"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type matchDTO struct {
	ID        uuid.UUID `db:"id"`
	RoomCode  string    `db:"room_code"`
	PlaceID   string    `db:"place_id"`
	Name      string    `db:"name"`
	Members   int       `db:"members"`
	MatchedAt time.Time `db:"matched_at"`
}

func (d *Driver) Record(ctx context.Context, m model.Match) error {
	dto := matchDTO{
		ID:        uuid.New(),
		RoomCode:  string(m.RoomID),
		PlaceID:   m.Restaurant.PlaceID,
		Name:      m.Restaurant.Name,
		Members:   m.Members,
		MatchedAt: m.MatchedAt,
	}

	query := `
		INSERT INTO matches (id, room_code, place_id, name, members, matched_at)
		VALUES (:id, :room_code, :place_id, :name, :members, :matched_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	return err
}

func (d *Driver) ByRoom(ctx context.Context, id model.RoomID) ([]model.Match, error) {
	var dtos []matchDTO

	query := `
        SELECT id, room_code, place_id, name, members, matched_at
        FROM matches
        WHERE room_code = $1
        ORDER BY matched_at DESC
    `

	if err := d.db.SelectContext(ctx, &dtos, query, string(id)); err != nil {
		return nil, err
	}

	matches := make([]model.Match, 0, len(dtos))
	for _, dto := range dtos {
		matches = append(matches, model.Match{
			RoomID: model.RoomID(dto.RoomCode),
			Restaurant: model.Restaurant{
				PlaceID: dto.PlaceID,
				Name:    dto.Name,
			},
			Members:   dto.Members,
			MatchedAt: dto.MatchedAt,
		})
	}
	return matches, nil
}
