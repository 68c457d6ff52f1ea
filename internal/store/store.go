// Package store defines the persistence contract for memory cards and the
// index math shared by its adapters. Action items are addressed by
// position only, so every mutation that changes the item list has to keep
// the completed-index set in step; that logic lives here rather than in
// each adapter.
package store

import (
	"context"

	"github.com/echonote/echonote/internal/model"
)

// Store is the persistence and mutation layer for memory cards.
//
// Adapters must execute each mutation as a single read-modify-write unit
// scoped to one card, so concurrent mutations against the same id never
// silently lose an update. Missing ids surface as model.ErrNotFound and
// out-of-range indices as model.ErrInvalidIndex.
type Store interface {
	// Create persists a new card from a transcript and validated fields.
	// The id and creation timestamp are assigned here; the completed set
	// starts empty.
	Create(ctx context.Context, transcript string, card model.CandidateCard) (*model.MemoryCard, error)

	// List returns cards ordered by creation time descending. The caller
	// is expected to have clamped limit already; values below 1 fall back
	// to the adapter default.
	List(ctx context.Context, limit int) ([]*model.MemoryCard, error)

	GetByID(ctx context.Context, id string) (*model.MemoryCard, error)

	// UpdateFields replaces only the fields present in req. Replacing the
	// action item list drops completed indices that no longer fit.
	UpdateFields(ctx context.Context, id string, req model.UpdateCardRequest) (*model.MemoryCard, error)

	// ToggleActionItem flips completion membership of the item at index.
	ToggleActionItem(ctx context.Context, id string, index int) (*model.MemoryCard, error)

	// UpdateActionItem replaces the text of the item at index. Completion
	// state is untouched.
	UpdateActionItem(ctx context.Context, id string, index int, text string) (*model.MemoryCard, error)

	// DeleteActionItem removes the item at index and re-indexes the
	// completed set in the same transaction.
	DeleteActionItem(ctx context.Context, id string, index int) (*model.MemoryCard, error)

	// Delete removes the card permanently.
	Delete(ctx context.Context, id string) error

	HealthPing(ctx context.Context) error
	Close() error
}
