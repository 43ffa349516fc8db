package model

// Turn is one entry of the AI consultant history for a chat.
type Turn struct {
	IsUser bool   `json:"is_user"`
	Text   string `json:"text"`
}

// TrimTurns keeps at most the last limit turns.
func TrimTurns(turns []Turn, limit int) []Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	out := make([]Turn, limit)
	copy(out, turns[len(turns)-limit:])
	return out
}
