package database

import "fmt"

// Tables holds the resolved names of the tables the ad-hoc query paths
// (search, recommendations) interpolate into SQL. Resolution happens once
// at startup; datasets imported by older tooling used different fact table
// names.
type Tables struct {
	Transactions string
	Towns        string
	FlatTypes    string
}

var tableCandidates = map[string][]string{
	"transactions": {"transactions", "resale_transactions", "hdb_transactions"},
	"towns":        {"towns", "hdb_towns"},
	"flat_types":   {"flat_types", "hdb_flat_types"},
}

// DetectTables introspects sqlite_master and memoizes the result for the
// lifetime of the Database.
func (d *Database) DetectTables() (Tables, error) {
	d.tablesOnce.Do(func() {
		d.tables, d.tablesErr = d.detectTables()
	})
	return d.tables, d.tablesErr
}

func (d *Database) detectTables() (Tables, error) {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return Tables{}, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Tables{}, err
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return Tables{}, err
	}

	resolve := func(logical string) (string, error) {
		for _, candidate := range tableCandidates[logical] {
			if present[candidate] {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("no %s table found in schema", logical)
	}

	var t Tables
	if t.Transactions, err = resolve("transactions"); err != nil {
		return Tables{}, err
	}
	if t.Towns, err = resolve("towns"); err != nil {
		return Tables{}, err
	}
	if t.FlatTypes, err = resolve("flat_types"); err != nil {
		return Tables{}, err
	}
	return t, nil
}
