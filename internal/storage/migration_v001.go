package storage

import "database/sql"

// migrateV001 creates the initial check_events schema.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE check_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			product_code  TEXT NOT NULL DEFAULT '',
			system_id     TEXT NOT NULL DEFAULT '',
			checked_by    TEXT NOT NULL DEFAULT '',
			checked_at    TEXT NOT NULL DEFAULT '',
			event_date    TEXT NOT NULL DEFAULT '',
			point_of_sale TEXT NOT NULL DEFAULT '',
			teams         TEXT NOT NULL DEFAULT '',
			notes         TEXT NOT NULL DEFAULT '',
			supplier_type TEXT NOT NULL DEFAULT '',
			client_name   TEXT NOT NULL DEFAULT '',
			images        TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_check_events_date ON check_events(event_date)`,
		`CREATE INDEX idx_check_events_checked_by ON check_events(checked_by)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
