package infra_places

import (
	"context"
	"log"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/ashchv/grubswipe/internal/config"
	"github.com/ashchv/grubswipe/internal/model"
	usecase_catalog "github.com/ashchv/grubswipe/internal/usecase/catalog"
)

const maxReviewExcerpts = 3

type Driver struct {
	client *maps.Client
}

func MustEstablishConn(cfg config.Places) *Driver {
	client, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		log.Fatal("places client init failed: ", err)
	}
	return &Driver{client: client}
}

func (d *Driver) Nearby(ctx context.Context, loc model.Location, radiusMeters int, pageToken string) (usecase_catalog.Page, error) {
	req := &maps.NearbySearchRequest{PageToken: pageToken}
	if pageToken == "" {
		req.Location = &maps.LatLng{Lat: loc.Latitude, Lng: loc.Longitude}
		req.Radius = uint(radiusMeters)
		req.Type = maps.PlaceTypeRestaurant
		req.OpenNow = true
	}

	resp, err := d.client.NearbySearch(ctx, req)
	if err != nil {
		return usecase_catalog.Page{}, mapErr(err)
	}

	page := usecase_catalog.Page{NextPageToken: resp.NextPageToken}
	for _, res := range resp.Results {
		page.Restaurants = append(page.Restaurants, model.Restaurant{
			PlaceID:      res.PlaceID,
			Name:         res.Name,
			Rating:       float64(res.Rating),
			PriceLevel:   res.PriceLevel,
			RatingsTotal: res.UserRatingsTotal,
		})
	}
	return page, nil
}

func (d *Driver) Details(ctx context.Context, placeID string) (model.RestaurantDetails, error) {
	resp, err := d.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: placeID})
	if err != nil {
		return model.RestaurantDetails{}, mapErr(err)
	}

	details := model.RestaurantDetails{
		Address:     resp.FormattedAddress,
		Description: strings.Join(resp.Types, ", "),
	}
	if resp.OpeningHours != nil {
		details.Hours = resp.OpeningHours.WeekdayText
	}
	for _, photo := range resp.Photos {
		details.Photos = append(details.Photos, photo.PhotoReference)
	}
	for i, review := range resp.Reviews {
		if i == maxReviewExcerpts {
			break
		}
		details.Reviews = append(details.Reviews, review.Text)
	}
	return details, nil
}

func mapErr(err error) error {
	if strings.Contains(err.Error(), "OVER_QUERY_LIMIT") {
		return usecase_catalog.ErrUpstreamLimited
	}
	return err
}
