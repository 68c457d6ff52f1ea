// Package postgres implements store.Store on PostgreSQL via database/sql
// with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/store"
)

const ddl = `
CREATE TABLE IF NOT EXISTS memory_cards (
    id                     TEXT PRIMARY KEY,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
    transcript             TEXT NOT NULL,
    title                  TEXT NOT NULL,
    category               JSONB NOT NULL,
    action_items           JSONB NOT NULL,
    completed_action_items JSONB NOT NULL,
    mood                   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memory_cards_created_at ON memory_cards(created_at DESC);
`

// Store is a Postgres-backed card store.
type Store struct {
	db *sql.DB
}

// Open connects using the pgx stdlib driver and ensures the schema.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(ddl); err != nil {
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
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO memory_cards (id, transcript, title, category, action_items, completed_action_items, mood)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at
    `, m.ID, m.Transcript, m.Title, cat, items, done, m.Mood)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*model.MemoryCard, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, created_at, transcript, title, category, action_items, completed_action_items, mood
        FROM memory_cards ORDER BY created_at DESC LIMIT $1
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
        FROM memory_cards WHERE id=$1
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM memory_cards WHERE id=$1`, id)
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

// mutate locks the card's row for the duration of the transaction, so two
// concurrent mutations of the same card serialize instead of losing one
// update.
func (s *Store) mutate(ctx context.Context, id string, fn func(*model.MemoryCard) error) (*model.MemoryCard, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
        SELECT id, created_at, transcript, title, category, action_items, completed_action_items, mood
        FROM memory_cards WHERE id=$1
        FOR UPDATE
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
        SET transcript=$1, title=$2, category=$3, action_items=$4, completed_action_items=$5, mood=$6
        WHERE id=$7
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
		m     model.MemoryCard
		cat   []byte
		items []byte
		done  []byte
		ts    time.Time
	)
	if err := row.Scan(&m.ID, &ts, &m.Transcript, &m.Title, &cat, &items, &done, &m.Mood); err != nil {
		return nil, err
	}
	m.CreatedAt = ts.UTC()
	if err := json.Unmarshal(cat, &m.Category); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	if err := json.Unmarshal(items, &m.ActionItems); err != nil {
		return nil, fmt.Errorf("decode action items: %w", err)
	}
	if err := json.Unmarshal(done, &m.CompletedActionItems); err != nil {
		return nil, fmt.Errorf("decode completed indices: %w", err)
	}
	normalizeLists(&m)
	return &m, nil
}

func marshalLists(m *model.MemoryCard) (category, items, done []byte, err error) {
	normalizeLists(m)
	c, err := json.Marshal(m.Category)
	if err != nil {
		return nil, nil, nil, err
	}
	i, err := json.Marshal(m.ActionItems)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := json.Marshal(m.CompletedActionItems)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, i, d, nil
}

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
