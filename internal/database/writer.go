package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

type leaseKey struct {
	commenceYear, years, months int
}

type blockKey struct {
	number, street string
	townID         int64
}

// Writer is the gorm-backed write path used only by the import pipeline.
// Dimension lookups are cached so a full dataset import resolves each town,
// flat type, model, storey range, lease and block exactly once.
type Writer struct {
	orm    *gorm.DB
	logger *logrus.Logger

	towns      map[string]int64
	flatTypes  map[string]int64
	flatModels map[string]int64
	storeys    map[string]int64
	leases     map[leaseKey]int64
	blocks     map[blockKey]int64
}

func NewWriter(dbPath string, logger *logrus.Logger) (*Writer, error) {
	orm, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening gorm connection: %w", err)
	}
	return &Writer{
		orm:        orm,
		logger:     logger,
		towns:      make(map[string]int64),
		flatTypes:  make(map[string]int64),
		flatModels: make(map[string]int64),
		storeys:    make(map[string]int64),
		leases:     make(map[leaseKey]int64),
		blocks:     make(map[blockKey]int64),
	}, nil
}

// WriteBatch resolves each record's dimensions and inserts the transaction
// rows in one database transaction.
func (w *Writer) WriteBatch(records []models.ResaleRecord) error {
	if len(records) == 0 {
		return nil
	}

	return w.orm.Transaction(func(tx *gorm.DB) error {
		rows := make([]models.TransactionRow, 0, len(records))
		for _, rec := range records {
			townID, err := w.townID(tx, rec.Town)
			if err != nil {
				return err
			}
			flatTypeID, err := w.flatTypeID(tx, rec.FlatType, rec.TypicalRooms)
			if err != nil {
				return err
			}
			flatModelID, err := w.flatModelID(tx, rec.FlatModel)
			if err != nil {
				return err
			}
			storeyID, err := w.storeyID(tx, rec.StoreyRange, rec.StoreyMin, rec.StoreyMax)
			if err != nil {
				return err
			}
			leaseID, err := w.leaseID(tx, rec.LeaseCommenceYear, rec.RemainingLeaseYears, rec.RemainingLeaseMonths)
			if err != nil {
				return err
			}
			blockID, err := w.blockID(tx, rec.Block, rec.StreetName, townID)
			if err != nil {
				return err
			}

			rows = append(rows, models.TransactionRow{
				Month:        rec.Month,
				Price:        rec.Price,
				FloorAreaSqm: rec.FloorAreaSqm,
				PricePerSqm:  rec.PricePerSqm,
				BlockID:      blockID,
				FlatTypeID:   flatTypeID,
				FlatModelID:  flatModelID,
				StoreyID:     storeyID,
				LeaseID:      leaseID,
			})
		}

		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("inserting transactions: %w", err)
		}
		return nil
	})
}

func (w *Writer) townID(tx *gorm.DB, name string) (int64, error) {
	if id, ok := w.towns[name]; ok {
		return id, nil
	}
	row := models.TownRow{TownName: name}
	if err := tx.Where("town_name = ?", name).FirstOrCreate(&row).Error; err != nil {
		return 0, fmt.Errorf("resolving town %q: %w", name, err)
	}
	w.towns[name] = row.TownID
	return row.TownID, nil
}

func (w *Writer) flatTypeID(tx *gorm.DB, name string, typicalRooms *int) (int64, error) {
	if id, ok := w.flatTypes[name]; ok {
		return id, nil
	}
	var row models.FlatTypeRow
	err := tx.Where("flat_type_name = ?", name).
		Attrs(models.FlatTypeRow{FlatTypeName: name, TypicalRooms: typicalRooms}).
		FirstOrCreate(&row).Error
	if err != nil {
		return 0, fmt.Errorf("resolving flat type %q: %w", name, err)
	}
	w.flatTypes[name] = row.FlatTypeID
	return row.FlatTypeID, nil
}

func (w *Writer) flatModelID(tx *gorm.DB, name string) (int64, error) {
	if id, ok := w.flatModels[name]; ok {
		return id, nil
	}
	row := models.FlatModelRow{FlatModelName: name}
	if err := tx.Where("flat_model_name = ?", name).FirstOrCreate(&row).Error; err != nil {
		return 0, fmt.Errorf("resolving flat model %q: %w", name, err)
	}
	w.flatModels[name] = row.FlatModelID
	return row.FlatModelID, nil
}

func (w *Writer) storeyID(tx *gorm.DB, rangeLabel string, floorMin, floorMax int) (int64, error) {
	if id, ok := w.storeys[rangeLabel]; ok {
		return id, nil
	}
	var row models.StoreyRangeRow
	err := tx.Where("range = ?", rangeLabel).
		Attrs(models.StoreyRangeRow{Range: rangeLabel, FloorMin: floorMin, FloorMax: floorMax}).
		FirstOrCreate(&row).Error
	if err != nil {
		return 0, fmt.Errorf("resolving storey range %q: %w", rangeLabel, err)
	}
	w.storeys[rangeLabel] = row.StoreyID
	return row.StoreyID, nil
}

func (w *Writer) leaseID(tx *gorm.DB, commenceYear, years, months int) (int64, error) {
	k := leaseKey{commenceYear, years, months}
	if id, ok := w.leases[k]; ok {
		return id, nil
	}
	row := models.LeaseRow{
		LeaseCommenceYear:    commenceYear,
		RemainingLeaseYears:  years,
		RemainingLeaseMonths: months,
	}
	err := tx.Where(
		"lease_commence_year = ? AND remaining_lease_years = ? AND remaining_lease_months = ?",
		commenceYear, years, months,
	).FirstOrCreate(&row).Error
	if err != nil {
		return 0, fmt.Errorf("resolving lease %d/%dy%dm: %w", commenceYear, years, months, err)
	}
	w.leases[k] = row.LeaseID
	return row.LeaseID, nil
}

func (w *Writer) blockID(tx *gorm.DB, number, street string, townID int64) (int64, error) {
	k := blockKey{number, street, townID}
	if id, ok := w.blocks[k]; ok {
		return id, nil
	}
	var row models.BlockRow
	err := tx.Where("block_number = ? AND street_name = ? AND town_id = ?", number, street, townID).
		Attrs(models.BlockRow{BlockNumber: number, StreetName: street, TownID: townID}).
		FirstOrCreate(&row).Error
	if err != nil {
		return 0, fmt.Errorf("resolving block %s %s: %w", number, street, err)
	}
	w.blocks[k] = row.BlockID
	return row.BlockID, nil
}
