package model

// Restaurant is one candidate item. PlaceID is the external reference
// identity; the position inside a room's shuffled sequence is the key
// used by all vote operations.
type Restaurant struct {
	PlaceID      string
	Name         string
	Rating       float64
	PriceLevel   int
	RatingsTotal int

	// Filled in asynchronously once enrichment completes. A room is fully
	// usable while this is still nil.
	Details *RestaurantDetails
}

type RestaurantDetails struct {
	Address     string
	Hours       []string
	Photos      []string
	Description string
	Reviews     []string
}
