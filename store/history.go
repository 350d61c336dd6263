package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History records every processed utterance so past translations can be
// reviewed with `voxlate history`.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	createUtterancesTable := `
	CREATE TABLE IF NOT EXISTS utterances (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT,
		source_text TEXT,
		detected_lang TEXT,
		translated TEXT,
		artifact TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(createUtterancesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create utterances table: %w", err)
	}

	return &History{db: db}, nil
}

type Utterance struct {
	ID         int64
	Mode       string
	Source     string
	Detected   string
	Translated string
	Artifact   string
	CreatedAt  time.Time
}

func (h *History) Save(mode, source, detected, translated, artifact string) error {
	stmt, err := h.db.Prepare("INSERT INTO utterances(mode, source_text, detected_lang, translated, artifact, timestamp) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(mode, source, detected, translated, artifact, time.Now())
	return err
}

// Recent returns the newest utterances first, up to limit.
func (h *History) Recent(limit int) ([]Utterance, error) {
	rows, err := h.db.Query(
		"SELECT id, mode, source_text, detected_lang, translated, artifact, timestamp FROM utterances ORDER BY timestamp DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Utterance
	for rows.Next() {
		var u Utterance
		if err := rows.Scan(&u.ID, &u.Mode, &u.Source, &u.Detected, &u.Translated, &u.Artifact, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}
