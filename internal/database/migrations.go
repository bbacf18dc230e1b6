package database

// RunMigrations creates the normalized resale schema. Every statement is
// idempotent so the server can run it unconditionally at startup.
func (d *Database) RunMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS towns (
			town_id INTEGER PRIMARY KEY AUTOINCREMENT,
			town_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS flat_types (
			flat_type_id INTEGER PRIMARY KEY AUTOINCREMENT,
			flat_type_name TEXT NOT NULL UNIQUE,
			typical_rooms INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS flat_models (
			flat_model_id INTEGER PRIMARY KEY AUTOINCREMENT,
			flat_model_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS storey_ranges (
			storey_id INTEGER PRIMARY KEY AUTOINCREMENT,
			range TEXT NOT NULL UNIQUE,
			floor_min INTEGER,
			floor_max INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS leases (
			lease_id INTEGER PRIMARY KEY AUTOINCREMENT,
			lease_commence_year INTEGER NOT NULL,
			remaining_lease_years INTEGER NOT NULL,
			remaining_lease_months INTEGER NOT NULL DEFAULT 0,
			UNIQUE(lease_commence_year, remaining_lease_years, remaining_lease_months)
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			block_id INTEGER PRIMARY KEY AUTOINCREMENT,
			block_number TEXT NOT NULL,
			street_name TEXT NOT NULL,
			town_id INTEGER NOT NULL REFERENCES towns(town_id),
			latitude REAL,
			longitude REAL,
			UNIQUE(block_number, street_name, town_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
			month TEXT NOT NULL,
			price REAL NOT NULL,
			floor_area_sqm REAL NOT NULL,
			price_per_sqm REAL NOT NULL,
			block_id INTEGER NOT NULL REFERENCES blocks(block_id),
			flat_type_id INTEGER NOT NULL REFERENCES flat_types(flat_type_id),
			flat_model_id INTEGER NOT NULL REFERENCES flat_models(flat_model_id),
			storey_id INTEGER NOT NULL REFERENCES storey_ranges(storey_id),
			lease_id INTEGER NOT NULL REFERENCES leases(lease_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_month
			ON transactions(month)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_block
			ON transactions(block_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_flat_type
			ON transactions(flat_type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_price
			ON transactions(price)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_town
			ON blocks(town_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_coordinates
			ON blocks(latitude, longitude)`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
