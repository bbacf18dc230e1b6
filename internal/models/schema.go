package models

// gorm schema structs for the write path. Table names match the sqlite
// schema created by database.RunMigrations.

type TownRow struct {
	TownID   int64  `gorm:"column:town_id;primaryKey;autoIncrement"`
	TownName string `gorm:"column:town_name;uniqueIndex"`
}

func (TownRow) TableName() string { return "towns" }

type FlatTypeRow struct {
	FlatTypeID   int64  `gorm:"column:flat_type_id;primaryKey;autoIncrement"`
	FlatTypeName string `gorm:"column:flat_type_name;uniqueIndex"`
	TypicalRooms *int   `gorm:"column:typical_rooms"`
}

func (FlatTypeRow) TableName() string { return "flat_types" }

type FlatModelRow struct {
	FlatModelID   int64  `gorm:"column:flat_model_id;primaryKey;autoIncrement"`
	FlatModelName string `gorm:"column:flat_model_name;uniqueIndex"`
}

func (FlatModelRow) TableName() string { return "flat_models" }

type StoreyRangeRow struct {
	StoreyID int64  `gorm:"column:storey_id;primaryKey;autoIncrement"`
	Range    string `gorm:"column:range;uniqueIndex"`
	FloorMin int    `gorm:"column:floor_min"`
	FloorMax int    `gorm:"column:floor_max"`
}

func (StoreyRangeRow) TableName() string { return "storey_ranges" }

type LeaseRow struct {
	LeaseID              int64 `gorm:"column:lease_id;primaryKey;autoIncrement"`
	LeaseCommenceYear    int   `gorm:"column:lease_commence_year"`
	RemainingLeaseYears  int   `gorm:"column:remaining_lease_years"`
	RemainingLeaseMonths int   `gorm:"column:remaining_lease_months"`
}

func (LeaseRow) TableName() string { return "leases" }

type BlockRow struct {
	BlockID     int64  `gorm:"column:block_id;primaryKey;autoIncrement"`
	BlockNumber string `gorm:"column:block_number"`
	StreetName  string `gorm:"column:street_name"`
	TownID      int64  `gorm:"column:town_id"`
	Latitude    *float64
	Longitude   *float64
}

func (BlockRow) TableName() string { return "blocks" }

type TransactionRow struct {
	TransactionID int64   `gorm:"column:transaction_id;primaryKey;autoIncrement"`
	Month         string  `gorm:"column:month"`
	Price         float64 `gorm:"column:price"`
	FloorAreaSqm  float64 `gorm:"column:floor_area_sqm"`
	PricePerSqm   float64 `gorm:"column:price_per_sqm"`
	BlockID       int64   `gorm:"column:block_id"`
	FlatTypeID    int64   `gorm:"column:flat_type_id"`
	FlatModelID   int64   `gorm:"column:flat_model_id"`
	StoreyID      int64   `gorm:"column:storey_id"`
	LeaseID       int64   `gorm:"column:lease_id"`
}

func (TransactionRow) TableName() string { return "transactions" }

// ResaleRecord is one parsed CSV row from the HDB resale dataset, before
// dimension resolution. All strings are cleaned and uppercased.
type ResaleRecord struct {
	Month                string
	Town                 string
	FlatType             string
	TypicalRooms         *int
	Block                string
	StreetName           string
	StoreyRange          string
	StoreyMin            int
	StoreyMax            int
	FloorAreaSqm         float64
	FlatModel            string
	LeaseCommenceYear    int
	RemainingLeaseYears  int
	RemainingLeaseMonths int
	Price                float64
	PricePerSqm          float64
}
