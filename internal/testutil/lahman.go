package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	// sqlite driver for fixture databases.
	_ "modernc.org/sqlite"
)

const lahmanSchema = `
	CREATE TABLE Batting (
		playerID TEXT NOT NULL,
		yearID INTEGER NOT NULL,
		teamID TEXT NOT NULL,
		HR INTEGER,
		note TEXT
	);

	INSERT INTO Batting (playerID, yearID, teamID, HR, note) VALUES
		('bautijo02', 2010, 'TOR', 54, NULL),
		('pujolal01', 2010, 'SLN', 42, ''),
		('konerpa01', 2010, 'CHA', 39, 'x'),
		('cabremi01', 2010, 'DET', 38, NULL),
		('pujolal01', 2009, 'SLN', 47, NULL),
		('fieldpr01', 2009, 'MIL', 46, NULL);
`

// NewLahmanDB creates a small SQLite database holding a Batting table and
// returns its path. The file is removed when the test ends.
func NewLahmanDB(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lahman.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(context.Background(), lahmanSchema); err != nil {
		t.Fatalf("seed fixture database: %v", err)
	}
	return path
}
