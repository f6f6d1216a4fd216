package resolver

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/neurodesk/liquid/pkg/liquid"
)

// SQL serves partials stored in a SQLite table.
type SQL struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQL opens (and if needed creates) a template store at path.
func OpenSQL(path string) (*SQL, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS templates (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQL{db: db}, nil
}

// Put stores a partial, replacing any previous source.
func (s *SQL) Put(name, source string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO templates (name, source) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET source = excluded.source`, name, source)
	return err
}

// Delete removes a partial.
func (s *SQL) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM templates WHERE name = ?", name)
	return err
}

// Names lists stored partials in name order.
func (s *SQL) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM templates ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReadTemplate implements liquid.FileSystem.
func (s *SQL) ReadTemplate(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var source string
	err := s.db.QueryRow("SELECT source FROM templates WHERE name = ?", name).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", liquid.ErrTemplateNotFound{Name: name}
	}
	if err != nil {
		return "", err
	}
	return source, nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}
