package matchlogmock

import (
	"context"

	"github.com/ashchv/grubswipe/internal/model"
)

// Stand-in match log for deployments without Postgres.
type MatchLog struct{}

func New() *MatchLog {
	return &MatchLog{}
}

func (m *MatchLog) Record(ctx context.Context, match model.Match) error {
	return nil
}

func (m *MatchLog) ByRoom(ctx context.Context, id model.RoomID) ([]model.Match, error) {
	return nil, nil
}
