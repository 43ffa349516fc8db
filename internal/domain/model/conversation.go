package model

import "time"

// Step is the position of a chat inside the calculator form.
type Step string

const (
	StepNone              Step = ""
	StepAwaitingWarehouse Step = "awaiting_warehouse"
	StepAwaitingCountry   Step = "awaiting_country"
	StepAwaitingCity      Step = "awaiting_city"
	StepAwaitingWeight    Step = "awaiting_weight"
)

// Steps lists the form steps in the only order they may be visited.
var Steps = []Step{StepAwaitingWarehouse, StepAwaitingCountry, StepAwaitingCity, StepAwaitingWeight}

// Index returns the position of s in Steps, or -1 for StepNone and unknown values.
func (s Step) Index() int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// ConversationState is the per-chat calculator record. It is deleted when the
// quote is sent or the flow is aborted.
type ConversationState struct {
	ChatID    int64      `json:"chat_id"`
	Step      Step       `json:"step"`
	Warehouse *Warehouse `json:"warehouse,omitempty"`
	Country   *Country   `json:"country,omitempty"`
	City      *City      `json:"city,omitempty"`
	Weight    string     `json:"weight,omitempty"` // normalized decimal, kg
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewConversationState(chatID int64, now time.Time) *ConversationState {
	return &ConversationState{
		ChatID:    chatID,
		Step:      StepAwaitingWarehouse,
		UpdatedAt: now,
	}
}

// Complete reports whether every slot needed for a calculation is filled.
func (s *ConversationState) Complete() bool {
	return s != nil && s.Warehouse != nil && s.Country != nil && s.City != nil && s.Weight != ""
}

// Consistent reports whether every slot answered before Step is filled.
func (s *ConversationState) Consistent() bool {
	i := s.Step.Index()
	if i < 0 {
		return false
	}
	return (i < 1 || s.Warehouse != nil) && (i < 2 || s.Country != nil) && (i < 3 || s.City != nil)
}

// Expired reports whether the state was last touched more than ttl ago.
// A non-positive ttl never expires.
func (s *ConversationState) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
