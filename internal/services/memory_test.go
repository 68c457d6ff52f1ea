package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echonote/echonote/internal/model"
	"github.com/echonote/echonote/internal/store/sqlite"
)

func newService(t *testing.T) *MemoryService {
	t.Helper()
	s, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewMemoryService(s, DefaultListLimits)
}

func TestClampLimit(t *testing.T) {
	svc := newService(t)
	assert.Equal(t, 20, svc.ClampLimit(0))
	assert.Equal(t, 1, svc.ClampLimit(-5))
	assert.Equal(t, 100, svc.ClampLimit(500))
	assert.Equal(t, 37, svc.ClampLimit(37))
}

func TestListNeverNil(t *testing.T) {
	svc := newService(t)
	out, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestListClampApplied(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.cards.Create(ctx, "t", model.CandidateCard{Title: "n", Mood: "m"})
		require.NoError(t, err)
	}

	out, err := svc.List(ctx, -10)
	require.NoError(t, err)
	// negative limit clamps up to the minimum, not down to nothing
	assert.Len(t, out, 1)
}

func TestLimitsSanitizedAtConstruction(t *testing.T) {
	svc := NewMemoryService(nil, ListLimits{Min: 0, Default: 0, Max: -1})
	assert.Equal(t, DefaultListLimits.Default, svc.ClampLimit(0))
	assert.Equal(t, DefaultListLimits.Max, svc.ClampLimit(1000))
}
