package store

import (
	"sort"

	"github.com/echonote/echonote/internal/model"
)

// ToggleIndex flips membership of index in the completed set and returns
// the set sorted. The input slice is not modified.
func ToggleIndex(completed []int, index int) []int {
	out := make([]int, 0, len(completed)+1)
	found := false
	for _, j := range completed {
		if j == index {
			found = true
			continue
		}
		out = append(out, j)
	}
	if !found {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// ReindexAfterDelete rewrites the completed set after removing the action
// item at removed: the removed index is dropped and every member greater
// than it shifts down by one. This is one transformation, not removal plus
// an independent shift; splitting it corrupts indices of unrelated items.
func ReindexAfterDelete(completed []int, removed int) []int {
	out := make([]int, 0, len(completed))
	for _, j := range completed {
		switch {
		case j == removed:
			// dropped with its item
		case j > removed:
			out = append(out, j-1)
		default:
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

// ApplyUpdate overwrites only the fields req carries. Replacing the action
// item list prunes completed indices that fall outside the new bounds.
func ApplyUpdate(card *model.MemoryCard, req model.UpdateCardRequest) {
	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Transcript != nil {
		card.Transcript = *req.Transcript
	}
	if req.Category != nil {
		card.Category = *req.Category
	}
	if req.Mood != nil {
		card.Mood = *req.Mood
	}
	if req.ActionItems != nil {
		card.ActionItems = *req.ActionItems
		card.CompletedActionItems = pruneOutOfRange(card.CompletedActionItems, len(card.ActionItems))
	}
}

func pruneOutOfRange(completed []int, length int) []int {
	out := make([]int, 0, len(completed))
	for _, j := range completed {
		if j >= 0 && j < length {
			out = append(out, j)
		}
	}
	return out
}
