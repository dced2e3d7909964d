package ws_session

import "github.com/ashchv/grubswipe/internal/model"

type restaurantDTO struct {
	PlaceID      string      `json:"place_id"`
	Name         string      `json:"name"`
	Rating       float64     `json:"rating"`
	PriceLevel   int         `json:"price_level"`
	RatingsTotal int         `json:"ratings_total"`
	Details      *detailsDTO `json:"details,omitempty"`
}

type detailsDTO struct {
	Address     string   `json:"address"`
	Hours       []string `json:"hours,omitempty"`
	Photos      []string `json:"photos,omitempty"`
	Description string   `json:"description,omitempty"`
	Reviews     []string `json:"reviews,omitempty"`
}

type tallyDTO struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

func toRestaurantDTO(r model.Restaurant) restaurantDTO {
	dto := restaurantDTO{
		PlaceID:      r.PlaceID,
		Name:         r.Name,
		Rating:       r.Rating,
		PriceLevel:   r.PriceLevel,
		RatingsTotal: r.RatingsTotal,
	}
	if r.Details != nil {
		dto.Details = &detailsDTO{
			Address:     r.Details.Address,
			Hours:       r.Details.Hours,
			Photos:      r.Details.Photos,
			Description: r.Details.Description,
			Reviews:     r.Details.Reviews,
		}
	}
	return dto
}

func toRestaurantDTOs(restaurants []model.Restaurant) []restaurantDTO {
	out := make([]restaurantDTO, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, toRestaurantDTO(r))
	}
	return out
}

func fromRestaurantDTOs(dtos []restaurantDTO) []model.Restaurant {
	out := make([]model.Restaurant, 0, len(dtos))
	for _, dto := range dtos {
		r := model.Restaurant{
			PlaceID:      dto.PlaceID,
			Name:         dto.Name,
			Rating:       dto.Rating,
			PriceLevel:   dto.PriceLevel,
			RatingsTotal: dto.RatingsTotal,
		}
		if dto.Details != nil {
			r.Details = &model.RestaurantDetails{
				Address:     dto.Details.Address,
				Hours:       dto.Details.Hours,
				Photos:      dto.Details.Photos,
				Description: dto.Details.Description,
				Reviews:     dto.Details.Reviews,
			}
		}
		out = append(out, r)
	}
	return out
}

func toTallyDTOs(tallies []model.Tally) []tallyDTO {
	out := make([]tallyDTO, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, tallyDTO{Likes: t.Likes, Dislikes: t.Dislikes})
	}
	return out
}
