package database

// BlockAddress is what the geocoder needs to resolve a block.
type BlockAddress struct {
	BlockID     int64
	BlockNumber string
	StreetName  string
	TownName    string
}

func (d *Database) GetBlocksWithoutCoordinates(limit int) ([]BlockAddress, error) {
	rows, err := d.db.Query(`
        SELECT b.block_id, b.block_number, b.street_name, tw.town_name
        FROM blocks b
        JOIN towns tw ON tw.town_id = b.town_id
        WHERE b.latitude IS NULL OR b.longitude IS NULL
        ORDER BY b.block_id ASC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []BlockAddress
	for rows.Next() {
		var b BlockAddress
		if err := rows.Scan(&b.BlockID, &b.BlockNumber, &b.StreetName, &b.TownName); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (d *Database) UpdateBlockCoordinates(blockID int64, latitude, longitude float64) error {
	_, err := d.db.Exec(`
        UPDATE blocks SET latitude = ?, longitude = ?
        WHERE block_id = ?
    `, latitude, longitude, blockID)
	return err
}

// TownPoint is one geocoded block position, grouped per town by the caller.
type TownPoint struct {
	TownName  string
	Latitude  float64
	Longitude float64
}

func (d *Database) GetTownBlockCoordinates() ([]TownPoint, error) {
	rows, err := d.db.Query(`
        SELECT tw.town_name, b.latitude, b.longitude
        FROM blocks b
        JOIN towns tw ON tw.town_id = b.town_id
        WHERE b.latitude IS NOT NULL AND b.longitude IS NOT NULL
        ORDER BY tw.town_name ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TownPoint
	for rows.Next() {
		var p TownPoint
		if err := rows.Scan(&p.TownName, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
