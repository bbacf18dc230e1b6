package geocoding

import (
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/database"
)

// BlockSource is the database access the backfill needs.
type BlockSource interface {
	GetBlocksWithoutCoordinates(limit int) ([]database.BlockAddress, error)
	UpdateBlockCoordinates(blockID int64, latitude, longitude float64) error
}

// Backfill geocodes up to limit blocks missing coordinates and writes the
// results back. Individual lookup failures are logged and skipped so one
// bad address does not stall the rest of the batch.
func (g *Geocoder) Backfill(src BlockSource, limit int) (int, error) {
	blocks, err := src.GetBlocksWithoutCoordinates(limit)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, block := range blocks {
		lat, lon, err := g.GeocodeBlock(block.BlockNumber, block.StreetName)
		if err != nil {
			g.logger.WithError(err).WithField("block_id", block.BlockID).Warn("Skipping block")
			continue
		}
		if err := src.UpdateBlockCoordinates(block.BlockID, lat, lon); err != nil {
			return updated, err
		}
		updated++
	}

	g.logger.WithField("updated", updated).Info("Coordinate backfill finished")
	return updated, nil
}
