// Package services hosts the use-case layer between HTTP handlers and the
// store.
package services

import (
	"context"

	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/store"
)

// ListLimits bounds the list page size. Out-of-range requests are clamped
// silently, never rejected.
type ListLimits struct {
	Min     int
	Default int
	Max     int
}

// DefaultListLimits matches the documented 1-100 range with a default
// page of 20.
var DefaultListLimits = ListLimits{Min: 1, Default: 20, Max: 100}

// MemoryService orchestrates card use cases on top of the store.
type MemoryService struct {
	cards  store.Store
	limits ListLimits
}

func NewMemoryService(cards store.Store, limits ListLimits) *MemoryService {
	if limits.Min < 1 {
		limits.Min = DefaultListLimits.Min
	}
	if limits.Max < limits.Min {
		limits.Max = DefaultListLimits.Max
	}
	if limits.Default < limits.Min || limits.Default > limits.Max {
		limits.Default = DefaultListLimits.Default
	}
	return &MemoryService{cards: cards, limits: limits}
}

// ClampLimit folds any requested page size into the configured range.
// Zero means "not specified" and takes the default.
func (s *MemoryService) ClampLimit(limit int) int {
	if limit == 0 {
		return s.limits.Default
	}
	if limit < s.limits.Min {
		return s.limits.Min
	}
	if limit > s.limits.Max {
		return s.limits.Max
	}
	return limit
}

func (s *MemoryService) List(ctx context.Context, limit int) ([]*model.MemoryCard, error) {
	out, err := s.cards.List(ctx, s.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.MemoryCard{}
	}
	return out, nil
}

func (s *MemoryService) Get(ctx context.Context, id string) (*model.MemoryCard, error) {
	return s.cards.GetByID(ctx, id)
}

func (s *MemoryService) UpdateFields(ctx context.Context, id string, req model.UpdateCardRequest) (*model.MemoryCard, error) {
	return s.cards.UpdateFields(ctx, id, req)
}

func (s *MemoryService) ToggleActionItem(ctx context.Context, id string, index int) (*model.MemoryCard, error) {
	return s.cards.ToggleActionItem(ctx, id, index)
}

func (s *MemoryService) UpdateActionItem(ctx context.Context, id string, index int, text string) (*model.MemoryCard, error) {
	return s.cards.UpdateActionItem(ctx, id, index, text)
}

func (s *MemoryService) DeleteActionItem(ctx context.Context, id string, index int) (*model.MemoryCard, error) {
	return s.cards.DeleteActionItem(ctx, id, index)
}

func (s *MemoryService) Delete(ctx context.Context, id string) error {
	return s.cards.Delete(ctx, id)
}
