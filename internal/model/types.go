package model

import "time"

// MemoryCard is one persisted structured voice note. Action items are
// addressed by position; CompletedActionItems holds indices into
// ActionItems and every member must stay within [0, len(ActionItems)).
type MemoryCard struct {
	ID                   string    `json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	Transcript           string    `json:"transcript"`
	Title                string    `json:"title"`
	Category             []string  `json:"category"`
	ActionItems          []string  `json:"action_items"`
	CompletedActionItems []int     `json:"completed_action_items"`
	Mood                 string    `json:"mood"`
}

// CandidateCard is the sanitized output of the structuring step. It carries
// no id or timestamps; the store assigns those at creation.
type CandidateCard struct {
	Title       string   `json:"title"`
	Category    []string `json:"category"`
	ActionItems []string `json:"action_items"`
	Mood        string   `json:"mood"`
}

// UpdateCardRequest captures a partial field update. Nil pointers mean
// "leave unchanged"; a non-nil empty slice replaces with an empty list.
type UpdateCardRequest struct {
	Title       *string   `json:"title,omitempty"`
	Transcript  *string   `json:"transcript,omitempty"`
	Category    *[]string `json:"category,omitempty"`
	Mood        *string   `json:"mood,omitempty"`
	ActionItems *[]string `json:"actionItems,omitempty"`
}

// Empty reports whether the request carries no field at all.
func (r UpdateCardRequest) Empty() bool {
	return r.Title == nil && r.Transcript == nil && r.Category == nil && r.Mood == nil && r.ActionItems == nil
}
