package usecase_catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashchv/grubswipe/internal/model"
)

var (
	ErrUpstreamLimited = errors.New("places quota exhausted")
	ErrUpstreamFailed  = errors.New("places request failed")
)

const metersPerMile = 1609.34

// Fast-food chains show up once per block; keep a single listing each.
var repeatChains = []string{"Starbucks", "Mcdonalds", "Subway", "Olive Garden", "Taco Bell"}

// Page is one page of nearby-search results.
type Page struct {
	Restaurants   []model.Restaurant
	NextPageToken string
}

//go:generate mockery --name=PlacesAPI --output=./mocks/places --filename=places.go
type PlacesAPI interface {
	// Nearby returns ErrUpstreamLimited when the upstream quota is hit.
	Nearby(ctx context.Context, loc model.Location, radiusMeters int, pageToken string) (Page, error)
	Details(ctx context.Context, placeID string) (model.RestaurantDetails, error)
}

//go:generate mockery --name=ResultCache --output=./mocks/cache --filename=cache.go
type ResultCache interface {
	Load(ctx context.Context, key string) ([]model.Restaurant, bool, error)
	Store(ctx context.Context, key string, restaurants []model.Restaurant) error
}

type Usecase struct {
	places PlacesAPI
	cache  ResultCache
	logger *slog.Logger

	// Follow-up page tokens are not valid immediately after they are
	// issued; tests shrink this.
	pageTokenDelay time.Duration
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) { u.logger = logger }
}

func WithPageTokenDelay(d time.Duration) Option {
	return func(u *Usecase) { u.pageTokenDelay = d }
}

func New(places PlacesAPI, cache ResultCache, opts ...Option) *Usecase {
	u := &Usecase{
		places:         places,
		cache:          cache,
		logger:         slog.Default(),
		pageTokenDelay: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// FetchInitial produces the candidate list for a new room: nearby search,
// one pagination follow-up, repeat-chain filtering. The bool result
// distinguishes "empty because nothing is nearby" from "empty because the
// upstream limited us".
func (u *Usecase) FetchInitial(ctx context.Context, loc model.Location, radiusMiles float64) ([]model.Restaurant, bool, error) {
	key := cacheKey(loc, radiusMiles)
	if restaurants, ok, err := u.cache.Load(ctx, key); err == nil && ok {
		return restaurants, false, nil
	} else if err != nil {
		u.logger.Warn("places cache read failed", slog.String("error", err.Error()))
	}

	meters := int(radiusMiles * metersPerMile)

	first, err := u.places.Nearby(ctx, loc, meters, "")
	if errors.Is(err, ErrUpstreamLimited) {
		return nil, true, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUpstreamFailed, err)
	}

	results := first.Restaurants
	if first.NextPageToken != "" {
		select {
		case <-time.After(u.pageTokenDelay):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}

		second, err := u.places.Nearby(ctx, loc, meters, first.NextPageToken)
		switch {
		case errors.Is(err, ErrUpstreamLimited):
			return nil, true, err
		case err != nil:
			// First page is still a usable room.
			u.logger.Warn("follow-up page failed", slog.String("error", err.Error()))
		default:
			results = append(results, second.Restaurants...)
		}
	}

	results = dropRepeatChains(results)

	if err := u.cache.Store(ctx, key, results); err != nil {
		u.logger.Warn("places cache write failed", slog.String("error", err.Error()))
	}
	return results, false, nil
}

// Enrich fetches per-place details. Individual failures are tolerated:
// the entry keeps its basic listing and index alignment is preserved.
func (u *Usecase) Enrich(ctx context.Context, restaurants []model.Restaurant) ([]model.Restaurant, error) {
	out := make([]model.Restaurant, len(restaurants))
	copy(out, restaurants)

	var failed int
	for i := range out {
		details, err := u.places.Details(ctx, out[i].PlaceID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			u.logger.Warn("details fetch failed",
				slog.String("place_id", out[i].PlaceID),
				slog.String("error", err.Error()))
			failed++
			continue
		}
		d := details
		out[i].Details = &d
	}

	if len(out) > 0 && failed == len(out) {
		return nil, ErrUpstreamFailed
	}
	return out, nil
}

func cacheKey(loc model.Location, radiusMiles float64) string {
	return fmt.Sprintf("%.3f:%.3f:%.1f", loc.Latitude, loc.Longitude, radiusMiles)
}

func dropRepeatChains(restaurants []model.Restaurant) []model.Restaurant {
	seen := make(map[string]int, len(repeatChains))
	out := make([]model.Restaurant, 0, len(restaurants))

	for _, r := range restaurants {
		name := strings.ToUpper(r.Name)
		chain := ""
		for _, c := range repeatChains {
			if strings.Contains(name, strings.ToUpper(c)) {
				chain = c
				break
			}
		}
		if chain != "" {
			if seen[chain] >= 1 {
				continue
			}
			seen[chain]++
		}
		out = append(out, r)
	}
	return out
}
