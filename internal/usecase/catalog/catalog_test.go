package usecase_catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"

	"github.com/ashchv/grubswipe/internal/model"
)

type stubPlaces struct {
	pages      map[string]Page
	pageErr    map[string]error
	details    map[string]model.RestaurantDetails
	detailsErr map[string]error

	nearbyCalls  []string
	detailsCalls []string
}

func (s *stubPlaces) Nearby(_ context.Context, _ model.Location, _ int, pageToken string) (Page, error) {
	s.nearbyCalls = append(s.nearbyCalls, pageToken)
	if err := s.pageErr[pageToken]; err != nil {
		return Page{}, err
	}
	return s.pages[pageToken], nil
}

func (s *stubPlaces) Details(_ context.Context, placeID string) (model.RestaurantDetails, error) {
	s.detailsCalls = append(s.detailsCalls, placeID)
	if err := s.detailsErr[placeID]; err != nil {
		return model.RestaurantDetails{}, err
	}
	return s.details[placeID], nil
}

type stubCache struct {
	entries  map[string][]model.Restaurant
	loadErr  error
	storeErr error
	stores   int
}

func (s *stubCache) Load(_ context.Context, key string) ([]model.Restaurant, bool, error) {
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	restaurants, ok := s.entries[key]
	return restaurants, ok, nil
}

func (s *stubCache) Store(_ context.Context, key string, restaurants []model.Restaurant) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stores++
	s.entries[key] = restaurants
	return nil
}

type resources struct {
	places  *stubPlaces
	cache   *stubCache
	usecase *Usecase
	ctx     context.Context
}

// Fresh stubs per subtest; page and cache fixtures must not leak between
// cases.
func initResources(_ provider.T) *resources {
	places := &stubPlaces{
		pages:      make(map[string]Page),
		pageErr:    make(map[string]error),
		details:    make(map[string]model.RestaurantDetails),
		detailsErr: make(map[string]error),
	}
	cache := &stubCache{entries: make(map[string][]model.Restaurant)}

	return &resources{
		places:  places,
		cache:   cache,
		usecase: New(places, cache, WithPageTokenDelay(0)),
		ctx:     context.Background(),
	}
}

type UsecaseCatalogUnitSuite struct {
	suite.Suite
}

func validLocation() model.Location {
	return model.Location{Latitude: 40.0, Longitude: -86.0}
}

func named(names ...string) []model.Restaurant {
	out := make([]model.Restaurant, len(names))
	for i, n := range names {
		out[i] = model.Restaurant{PlaceID: "id-" + n, Name: n}
	}
	return out
}

func (s *UsecaseCatalogUnitSuite) TestFetchInitial(t provider.T) {
	t.Run("Should return single page results", func(t provider.T) {
		r := initResources(t)
		r.places.pages[""] = Page{Restaurants: named("Thai Garden", "Burger Barn")}

		restaurants, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.NoError(t, err)
		assert.False(t, limited)
		assert.Len(t, restaurants, 2)
		assert.Equal(t, []string{""}, r.places.nearbyCalls)
		assert.Equal(t, 1, r.cache.stores)
	})

	t.Run("Should follow the pagination token once", func(t provider.T) {
		r := initResources(t)
		r.places.pages[""] = Page{Restaurants: named("First"), NextPageToken: "tok"}
		r.places.pages["tok"] = Page{Restaurants: named("Second")}

		restaurants, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.NoError(t, err)
		assert.False(t, limited)
		assert.Len(t, restaurants, 2)
		assert.Equal(t, []string{"", "tok"}, r.places.nearbyCalls)
	})

	t.Run("Should report rate limit as limited", func(t provider.T) {
		r := initResources(t)
		r.places.pageErr[""] = ErrUpstreamLimited

		restaurants, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.ErrorIs(t, err, ErrUpstreamLimited)
		assert.True(t, limited)
		assert.Nil(t, restaurants)
	})

	t.Run("Should report rate limit hit on the follow-up page", func(t provider.T) {
		r := initResources(t)
		r.places.pages[""] = Page{Restaurants: named("First"), NextPageToken: "tok"}
		r.places.pageErr["tok"] = ErrUpstreamLimited

		_, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.ErrorIs(t, err, ErrUpstreamLimited)
		assert.True(t, limited)
	})

	t.Run("Should keep first page when the follow-up fails", func(t provider.T) {
		r := initResources(t)
		r.places.pages[""] = Page{Restaurants: named("First"), NextPageToken: "tok"}
		r.places.pageErr["tok"] = errors.New("boom")

		restaurants, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.NoError(t, err)
		assert.False(t, limited)
		assert.Len(t, restaurants, 1)
	})

	t.Run("Should wrap plain upstream failures", func(t provider.T) {
		r := initResources(t)
		r.places.pageErr[""] = errors.New("boom")

		_, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.ErrorIs(t, err, ErrUpstreamFailed)
		assert.False(t, limited)
	})

	t.Run("Should keep one listing per repeat chain", func(t provider.T) {
		r := initResources(t)
		r.places.pages[""] = Page{Restaurants: named(
			"Starbucks Downtown", "Thai Garden", "Starbucks Uptown", "Subway", "SUBWAY West",
		)}

		restaurants, _, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.NoError(t, err)
		names := make([]string, len(restaurants))
		for i, rest := range restaurants {
			names[i] = rest.Name
		}
		assert.Equal(t, []string{"Starbucks Downtown", "Thai Garden", "Subway"}, names)
	})

	t.Run("Should serve cached results without calling upstream", func(t provider.T) {
		r := initResources(t)
		cached := named("Cached Diner")
		r.cache.entries[cacheKey(validLocation(), 5)] = cached

		restaurants, limited, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.NoError(t, err)
		assert.False(t, limited)
		assert.Equal(t, cached, restaurants)
		assert.Empty(t, r.places.nearbyCalls)
	})

	t.Run("Should tolerate cache failures", func(t provider.T) {
		r := initResources(t)
		r.places.pages[""] = Page{Restaurants: named("Thai Garden")}
		r.cache.loadErr = errors.New("redis down")
		r.cache.storeErr = errors.New("redis down")

		restaurants, _, err := r.usecase.FetchInitial(r.ctx, validLocation(), 5)

		assert.NoError(t, err)
		assert.Len(t, restaurants, 1)
	})
}

func (s *UsecaseCatalogUnitSuite) TestEnrich(t provider.T) {
	t.Run("Should attach details to every listing", func(t provider.T) {
		r := initResources(t)
		listings := named("A", "B")
		r.places.details["id-A"] = model.RestaurantDetails{Address: "addr-a"}
		r.places.details["id-B"] = model.RestaurantDetails{Address: "addr-b"}

		enriched, err := r.usecase.Enrich(r.ctx, listings)

		assert.NoError(t, err)
		assert.Equal(t, "addr-a", enriched[0].Details.Address)
		assert.Equal(t, "addr-b", enriched[1].Details.Address)
		// Input slice is untouched.
		assert.Nil(t, listings[0].Details)
	})

	t.Run("Should keep basic listing when one details call fails", func(t provider.T) {
		r := initResources(t)
		listings := named("A", "B")
		r.places.details["id-A"] = model.RestaurantDetails{Address: "addr-a"}
		r.places.detailsErr["id-B"] = errors.New("boom")

		enriched, err := r.usecase.Enrich(r.ctx, listings)

		assert.NoError(t, err)
		assert.NotNil(t, enriched[0].Details)
		assert.Nil(t, enriched[1].Details)
	})

	t.Run("Should fail when every details call fails", func(t provider.T) {
		r := initResources(t)
		listings := named("A", "B")
		r.places.detailsErr["id-A"] = errors.New("boom")
		r.places.detailsErr["id-B"] = errors.New("boom")

		_, err := r.usecase.Enrich(r.ctx, listings)

		assert.ErrorIs(t, err, ErrUpstreamFailed)
	})

	t.Run("Should stop on cancelled context", func(t provider.T) {
		r := initResources(t)
		listings := named("A")
		ctx, cancel := context.WithCancel(r.ctx)
		cancel()
		r.places.detailsErr["id-A"] = ctx.Err()

		_, err := r.usecase.Enrich(ctx, listings)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseCatalogUnitSuite))
}
