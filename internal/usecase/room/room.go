package usecase_room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashchv/grubswipe/internal/model"
	"github.com/ashchv/grubswipe/internal/registry"
)

var (
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrUpstreamUnavailable = errors.New("restaurant source unavailable")
	ErrNoFreeCodes         = errors.New("no available room codes")
	ErrInternal            = errors.New("internal error")
)

//go:generate mockery --name=Catalog --output=./mocks/catalog --filename=catalog.go
type Catalog interface {
	FetchInitial(ctx context.Context, loc model.Location, radiusMiles float64) ([]model.Restaurant, bool, error)
	Enrich(ctx context.Context, restaurants []model.Restaurant) ([]model.Restaurant, error)
}

type Usecase struct {
	registry *registry.Registry
	catalog  Catalog
	conns    registry.ConnCounter
	logger   *slog.Logger

	enrichTimeout time.Duration
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) { u.logger = logger }
}

func WithEnrichTimeout(d time.Duration) Option {
	return func(u *Usecase) { u.enrichTimeout = d }
}

func New(reg *registry.Registry, catalog Catalog, opts ...Option) *Usecase {
	u := &Usecase{
		registry:      reg,
		catalog:       catalog,
		logger:        slog.Default(),
		enrichTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AttachConns binds the transport's live-connection view. The gateway is
// built after the usecases, hence the two-phase wiring.
func (u *Usecase) AttachConns(conns registry.ConnCounter) {
	u.conns = conns
}

func (u *Usecase) AllocateCode(ctx context.Context) (model.RoomID, error) {
	id, err := u.registry.Allocate(ctx)
	if err != nil {
		if errors.Is(err, registry.ErrNoFreeCodes) {
			return model.EmptyRoomID, ErrNoFreeCodes
		}
		return model.EmptyRoomID, errors.Join(ErrInternal, err)
	}
	return id, nil
}

// CheckCode is the pre-join validation: the code must name a room the
// transport still reports as populated (or one being created right now).
func (u *Usecase) CheckCode(ctx context.Context, raw string) bool {
	id := model.NormalizeRoomID(raw)
	if id == model.EmptyRoomID {
		return false
	}
	return u.registry.Exists(id, u.conns)
}

type JoinResult struct {
	Restaurants  []model.Restaurant
	Tallies      []model.Tally
	Created      bool
	Limited      bool
	DetailsReady bool
}

// Join resolves the room, creating it on first use. Creation fetches the
// candidate list from the catalog; a rate-limited or failed fetch still
// opens the room, empty and flagged, so the joiner is never left hanging.
// On creation the enrichment pipeline is kicked off in the background.
func (u *Usecase) Join(ctx context.Context, raw string, member string, loc model.Location, radiusMiles float64) (JoinResult, error) {
	id := model.NormalizeRoomID(raw)
	if id == model.EmptyRoomID || member == "" {
		return JoinResult{}, ErrInvalidOperation
	}

	rm, created, err := u.registry.JoinOrCreate(ctx, id, member, func(fctx context.Context) ([]model.Restaurant, bool, error) {
		restaurants, limited, err := u.catalog.FetchInitial(fctx, loc, radiusMiles)
		if err != nil {
			u.logger.Error("initial restaurant fetch failed",
				slog.String("room", string(id)),
				slog.String("error", err.Error()))
			return nil, true, errors.Join(ErrUpstreamUnavailable, err)
		}
		return restaurants, limited, nil
	})
	if err != nil {
		return JoinResult{}, errors.Join(ErrInternal, err)
	}

	restaurants, detailsReady, limited := rm.Snapshot()
	if created && !limited && len(restaurants) > 0 {
		go u.enrich(id, restaurants)
	}

	return JoinResult{
		Restaurants:  restaurants,
		Tallies:      rm.Tallies(),
		Created:      created,
		Limited:      limited,
		DetailsReady: detailsReady,
	}, nil
}

func (u *Usecase) enrich(id model.RoomID, restaurants []model.Restaurant) {
	ctx, cancel := context.WithTimeout(context.Background(), u.enrichTimeout)
	defer cancel()

	enriched, err := u.catalog.Enrich(ctx, restaurants)
	if err != nil {
		u.logger.Warn("enrichment incomplete, room keeps basic listings",
			slog.String("room", string(id)),
			slog.String("error", err.Error()))
		return
	}
	if err := u.UpgradeRestaurants(ctx, string(id), enriched); err != nil {
		u.logger.Warn("enriched listings not applied",
			slog.String("room", string(id)),
			slog.String("error", err.Error()))
	}
}

// UpgradeRestaurants applies the enriched listing to a live room. One
// shot; index alignment is enforced by the room.
func (u *Usecase) UpgradeRestaurants(ctx context.Context, raw string, restaurants []model.Restaurant) error {
	rm, ok := u.registry.Lookup(model.NormalizeRoomID(raw))
	if !ok {
		return ErrInvalidOperation
	}
	if err := rm.UpgradeRestaurants(restaurants); err != nil {
		return errors.Join(ErrInvalidOperation, err)
	}
	return nil
}

// Leave is driven by transport disconnects. Reconciliation runs right
// after, against the transport's own membership view, so a missed event
// for some other connection still gets cleaned up here.
func (u *Usecase) Leave(ctx context.Context, raw string, member string) {
	id := model.NormalizeRoomID(raw)
	u.registry.Leave(id, member)
	u.registry.Reconcile(ctx, u.conns)
}

func (u *Usecase) Reconcile(ctx context.Context) {
	u.registry.Reconcile(ctx, u.conns)
}
