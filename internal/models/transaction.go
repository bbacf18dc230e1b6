package models

// Transaction is one resale record joined to its dimension tables. Records
// are created by the import pipeline and immutable afterwards.
type Transaction struct {
	TransactionID        int64   `json:"transaction_id"`
	Month                string  `json:"month"`
	Price                float64 `json:"price"`
	FloorAreaSqm         float64 `json:"floor_area_sqm"`
	PricePerSqm          float64 `json:"price_per_sqm"`
	TownName             string  `json:"town_name"`
	BlockNumber          string  `json:"block_number"`
	StreetName           string  `json:"street_name"`
	FlatTypeName         string  `json:"flat_type_name"`
	FlatModelName        string  `json:"flat_model_name"`
	StoreyRange          string  `json:"storey_range"`
	LeaseCommenceYear    int     `json:"lease_commence_year"`
	RemainingLeaseYears  int     `json:"remaining_lease_years"`
	RemainingLeaseMonths int     `json:"remaining_lease_months"`
}

type Town struct {
	TownID   int64  `json:"town_id"`
	TownName string `json:"town_name"`
}

// TownCount is a town with its transaction volume.
type TownCount struct {
	TownID           int64  `json:"town_id"`
	TownName         string `json:"town_name"`
	TransactionCount int    `json:"transaction_count"`
}

type FlatType struct {
	FlatTypeID   int64  `json:"flat_type_id"`
	FlatTypeName string `json:"flat_type_name"`
	TypicalRooms *int   `json:"typical_rooms"`
}

// SearchFilters are the optional predicates for property search. Zero
// values mean "no constraint".
type SearchFilters struct {
	Towns             []string
	FlatTypes         []string
	MinPrice          float64
	MaxPrice          float64
	MinFloorArea      float64
	MaxFloorArea      float64
	MinRemainingLease int
	SortBy            string
	SortOrder         string
	Limit             int
	Offset            int
}
