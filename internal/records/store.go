package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

var ErrNotFound = errors.New("records: not found")

// Store is the read-only record lookup used at session attach.
type Store interface {
	Get(ctx context.Context, recordID string) (Record, error)
}

// PostgresStore reads call records from the host platform's database.
// Strictly read-only: no Insert/Update/Delete methods exist by design.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{DB: db} }

const getRecordQuery = `
SELECT record_id, direction, from_number, to_number, call_ref, ended_at
FROM call_records
WHERE record_id = $1`

func (s *PostgresStore) Get(ctx context.Context, recordID string) (Record, error) {
	if recordID == "" {
		return Record{}, errors.New("records: record_id required")
	}
	if s.DB == nil {
		return Record{}, errors.New("records: db not configured")
	}

	var (
		r         Record
		direction string
		endedAt   sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, getRecordQuery, recordID).Scan(
		&r.RecordID, &direction, &r.FromNumber, &r.ToNumber, &r.CallRef, &endedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("records: get %s: %w", recordID, err)
	}

	r.Direction = Direction(direction)
	if endedAt.Valid {
		t := endedAt.Time
		r.EndedAt = &t
	}
	return r, nil
}

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	Records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Records: map[string]Record{}}
}

func (s *MemoryStore) Put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records[r.RecordID] = r
}

func (s *MemoryStore) Get(ctx context.Context, recordID string) (Record, error) {
	if recordID == "" {
		return Record{}, errors.New("records: record_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Records[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}
