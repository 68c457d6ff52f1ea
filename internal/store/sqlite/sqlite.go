// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory_cards (
    id                     TEXT PRIMARY KEY,
    created_at             INTEGER NOT NULL,
    transcript             TEXT NOT NULL,
    title                  TEXT NOT NULL,
    category               TEXT NOT NULL,
    action_items           TEXT NOT NULL,
    completed_action_items TEXT NOT NULL,
    mood                   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memory_cards_created_at ON memory_cards(created_at DESC);
`

// Store is a SQLite-backed card store. A single write transaction at a
// time is enforced by SQLite itself, which gives each mutation the
// per-record read-modify-write isolation the contract asks for.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the database file under dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".echonote")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// _txlock=immediate makes every transaction take the write lock up
	// front. Without it a deferred transaction that reads first and then
	// writes fails its lock upgrade with SQLITE_BUSY under concurrency,
	// bypassing busy_timeout entirely.
	path := filepath.Join(dir, "memories.db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) HealthPing(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (s *Store) Create(ctx context.Context, transcript string, card model.CandidateCard) (*model.MemoryCard, error) {
	m := &model.MemoryCard{
		ID:                   uuid.NewString(),
		CreatedAt:            time.Now().UTC(),
		Transcript:           transcript,
		Title:                card.Title,
		Category:             card.Category,
		ActionItems:          card.ActionItems,
		CompletedActionItems: []int{},
		Mood:                 card.Mood,
	}

	cat, items, done, err := marshalLists(m)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO memory_cards (id, created_at, transcript, title, category, action_items, completed_action_items, mood)
        VALUES (?,?,?,?,?,?,?,?)
    `, m.ID, m.CreatedAt.UnixNano(), m.Transcript, m.Title, cat, items, done, m.Mood)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*model.MemoryCard, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, created_at, transcript, title, category, action_items, completed_action_items, mood
        FROM memory_cards ORDER BY created_at DESC, rowid DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.MemoryCard
	for rows.Next() {
		m, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.MemoryCard, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, created_at, transcript, title, category, action_items, completed_action_items, mood
        FROM memory_cards WHERE id=?
    `, id)
	m, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return m, err
}

func (s *Store) UpdateFields(ctx context.Context, id string, req model.UpdateCardRequest) (*model.MemoryCard, error) {
	return s.mutate(ctx, id, func(m *model.MemoryCard) error {
		store.ApplyUpdate(m, req)
		return nil
	})
}

func (s *Store) ToggleActionItem(ctx context.Context, id string, index int) (*model.MemoryCard, error) {
	return s.mutate(ctx, id, func(m *model.MemoryCard) error {
		if index < 0 || index >= len(m.ActionItems) {
			return model.ErrInvalidIndex
		}
		m.CompletedActionItems = store.ToggleIndex(m.CompletedActionItems, index)
		return nil
	})
}

func (s *Store) UpdateActionItem(ctx context.Context, id string, index int, text string) (*model.MemoryCard, error) {
	return s.mutate(ctx, id, func(m *model.MemoryCard) error {
		if index < 0 || index >= len(m.ActionItems) {
			return model.ErrInvalidIndex
		}
		m.ActionItems[index] = text
		return nil
	})
}

func (s *Store) DeleteActionItem(ctx context.Context, id string, index int) (*model.MemoryCard, error) {
	return s.mutate(ctx, id, func(m *model.MemoryCard) error {
		if index < 0 || index >= len(m.ActionItems) {
			return model.ErrInvalidIndex
		}
		m.ActionItems = append(m.ActionItems[:index], m.ActionItems[index+1:]...)
		m.CompletedActionItems = store.ReindexAfterDelete(m.CompletedActionItems, index)
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memory_cards WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// mutate runs fn on the current row inside one immediate transaction and
// writes the result back, so the read-modify-write cycle cannot interleave
// with a concurrent mutation of the same card.
func (s *Store) mutate(ctx context.Context, id string, fn func(*model.MemoryCard) error) (*model.MemoryCard, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
        SELECT id, created_at, transcript, title, category, action_items, completed_action_items, mood
        FROM memory_cards WHERE id=?
    `, id)
	m, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := fn(m); err != nil {
		return nil, err
	}

	cat, items, done, err := marshalLists(m)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE memory_cards
        SET transcript=?, title=?, category=?, action_items=?, completed_action_items=?, mood=?
        WHERE id=?
    `, m.Transcript, m.Title, cat, items, done, m.Mood, m.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*model.MemoryCard, error) {
	var (
		m         model.MemoryCard
		createdAt int64
		cat       string
		items     string
		done      string
	)
	if err := row.Scan(&m.ID, &createdAt, &m.Transcript, &m.Title, &cat, &items, &done, &m.Mood); err != nil {
		return nil, err
	}
	m.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(cat), &m.Category); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &m.ActionItems); err != nil {
		return nil, fmt.Errorf("decode action items: %w", err)
	}
	if err := json.Unmarshal([]byte(done), &m.CompletedActionItems); err != nil {
		return nil, fmt.Errorf("decode completed indices: %w", err)
	}
	normalizeLists(&m)
	return &m, nil
}

func marshalLists(m *model.MemoryCard) (category, items, done string, err error) {
	normalizeLists(m)
	c, err := json.Marshal(m.Category)
	if err != nil {
		return "", "", "", err
	}
	i, err := json.Marshal(m.ActionItems)
	if err != nil {
		return "", "", "", err
	}
	d, err := json.Marshal(m.CompletedActionItems)
	if err != nil {
		return "", "", "", err
	}
	return string(c), string(i), string(d), nil
}

// normalizeLists keeps JSON round-trips stable: slices are never nil so
// they encode as [] rather than null.
func normalizeLists(m *model.MemoryCard) {
	if m.Category == nil {
		m.Category = []string{}
	}
	if m.ActionItems == nil {
		m.ActionItems = []string{}
	}
	if m.CompletedActionItems == nil {
		m.CompletedActionItems = []int{}
	}
}
