// Package warmstart persists solved variable values between runs, keyed by
// model fingerprint, so a later solve of the same model can start from the
// previous solution.
package warmstart

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cvxgo/cvxgo/pkg/cvx"
)

const schema = `
CREATE TABLE IF NOT EXISTS warm_values (
	fingerprint TEXT NOT NULL,
	name        TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	re          REAL NOT NULL,
	im          REAL NOT NULL,
	PRIMARY KEY (fingerprint, name, idx)
);`

// Store is a SQLite-backed archive of variable values.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (st *Store) Close() error { return st.db.Close() }

// Save records the current values of the named variables under the given
// fingerprint, replacing any earlier snapshot. Variables without a value are
// skipped.
func (st *Store) Save(fingerprint string, vars map[string]*cvx.Variable) error {
	tx, err := st.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM warm_values WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO warm_values (fingerprint, name, idx, re, im) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, v := range vars {
		val, ok := v.Value()
		if !ok {
			continue
		}
		for i, c := range val.ColumnMajor() {
			if _, err := stmt.Exec(fingerprint, name, i, real(c), imag(c)); err != nil {
				return fmt.Errorf("saving %s[%d]: %w", name, i, err)
			}
		}
	}
	return tx.Commit()
}

// Load assigns stored values onto the given variables through SetValue and
// returns how many variables were seeded. Variables with no snapshot, or
// whose shape no longer matches the stored data, are left untouched.
func (st *Store) Load(fingerprint string, vars map[string]*cvx.Variable) (int, error) {
	seeded := 0
	for name, v := range vars {
		rows, err := st.db.Query(
			`SELECT idx, re, im FROM warm_values WHERE fingerprint = ? AND name = ? ORDER BY idx`,
			fingerprint, name)
		if err != nil {
			return seeded, fmt.Errorf("loading %s: %w", name, err)
		}
		data := make([]complex128, 0, v.Shape().Len())
		ok := true
		for rows.Next() {
			var idx int
			var re, im float64
			if err := rows.Scan(&idx, &re, &im); err != nil {
				rows.Close()
				return seeded, fmt.Errorf("reading %s: %w", name, err)
			}
			if idx != len(data) {
				ok = false
				break
			}
			data = append(data, complex(re, im))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return seeded, err
		}
		if !ok || len(data) != v.Shape().Len() {
			continue
		}
		val, err := cvx.NewValue(v.Shape(), data)
		if err != nil {
			continue
		}
		if err := v.SetValue(val); err != nil {
			// Stored values may no longer fit, e.g. complex data saved for
			// a variable redeclared as real. Skip rather than fail the run.
			continue
		}
		seeded++
	}
	return seeded, nil
}
