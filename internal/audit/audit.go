package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS predictions (
	id              TEXT PRIMARY KEY,
	request_id      TEXT,
	source          TEXT NOT NULL,
	features        TEXT NOT NULL,
	predicted_class TEXT NOT NULL,
	confidence      REAL NOT NULL,
	probabilities   TEXT NOT NULL,
	created_at      TEXT NOT NULL
)`

// fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is a single row in the predictions table.
type Entry struct {
	ID             string             `json:"id"`
	RequestID      string             `json:"request_id,omitempty"`
	Source         string             `json:"source"` // "http" | "mqtt"
	Features       []float32          `json:"features"`
	PredictedClass string             `json:"predicted_class"`
	Confidence     float32            `json:"confidence"`
	Probabilities  map[string]float32 `json:"probabilities"`
	CreatedAt      time.Time          `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create predictions table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends entry. A missing ID or CreatedAt is filled in.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	features, err := json.Marshal(entry.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	probabilities, err := json.Marshal(entry.Probabilities)
	if err != nil {
		return fmt.Errorf("encode probabilities: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, request_id, source, features, predicted_class, confidence, probabilities, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullIfEmpty(entry.RequestID),
		entry.Source,
		string(features),
		entry.PredictedClass,
		float64(entry.Confidence),
		string(probabilities),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(request_id, ''), source, features, predicted_class, confidence, probabilities, created_at
		 FROM predictions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                                  Entry
			features, probabilities, createdAt string
			confidence                         float64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Source, &features, &e.PredictedClass, &confidence, &probabilities, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &e.Features); err != nil {
			return nil, fmt.Errorf("decode features for %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(probabilities), &e.Probabilities); err != nil {
			return nil, fmt.Errorf("decode probabilities for %s: %w", e.ID, err)
		}
		e.Confidence = float32(confidence)
		e.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
