package usecase_vote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashchv/grubswipe/internal/model"
	"github.com/ashchv/grubswipe/internal/room"
)

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInternal         = errors.New("internal error")
)

// Rooms resolves a code to its live room; satisfied by the registry.
type Rooms interface {
	Lookup(id model.RoomID) (*room.Room, bool)
}

//go:generate mockery --name=MatchLog --output=./mocks/matchlog --filename=matchlog.go
type MatchLog interface {
	Record(ctx context.Context, m model.Match) error
	ByRoom(ctx context.Context, id model.RoomID) ([]model.Match, error)
}

type Usecase struct {
	rooms    Rooms
	matchLog MatchLog
	logger   *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) { u.logger = logger }
}

func New(rooms Rooms, matchLog MatchLog, opts ...Option) *Usecase {
	u := &Usecase{
		rooms:    rooms,
		matchLog: matchLog,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type SwipeOutcome struct {
	Tallies []model.Tally
	Match   *model.Restaurant
}

// Swipe records one vote and reports the match, if this vote completed
// one. A bad index or unknown member is rejected without touching any
// state, so one misbehaving connection cannot corrupt the room.
func (u *Usecase) Swipe(ctx context.Context, raw string, member string, index int, dir model.Direction) (SwipeOutcome, error) {
	rm, ok := u.rooms.Lookup(model.NormalizeRoomID(raw))
	if !ok {
		return SwipeOutcome{}, ErrInvalidOperation
	}

	res, err := rm.Swipe(member, index, dir)
	if err != nil {
		return SwipeOutcome{}, errors.Join(ErrInvalidOperation, err)
	}

	if res.Match != nil {
		m := model.Match{
			RoomID:     rm.ID(),
			Restaurant: *res.Match,
			Members:    rm.MemberCount(),
			MatchedAt:  time.Now().UTC(),
		}
		// History is best effort; it must never block the broadcast.
		if err := u.matchLog.Record(ctx, m); err != nil {
			u.logger.Error("match not recorded",
				slog.String("room", string(m.RoomID)),
				slog.String("place_id", m.Restaurant.PlaceID),
				slog.String("error", err.Error()))
		}
	}

	return SwipeOutcome{Tallies: res.Tallies, Match: res.Match}, nil
}

func (u *Usecase) Undo(ctx context.Context, raw string, member string, index int) ([]model.Tally, error) {
	rm, ok := u.rooms.Lookup(model.NormalizeRoomID(raw))
	if !ok {
		return nil, ErrInvalidOperation
	}

	tallies, err := rm.Undo(member, index)
	if err != nil {
		return nil, errors.Join(ErrInvalidOperation, err)
	}
	return tallies, nil
}

func (u *Usecase) History(ctx context.Context, raw string) ([]model.Match, error) {
	matches, err := u.matchLog.ByRoom(ctx, model.NormalizeRoomID(raw))
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return matches, nil
}
