package models

// DeckFilters is the stored predicate of a deck. Empty slices mean "all",
// matching ReviewQuery semantics.
type DeckFilters struct {
	Types  []WordType  `json:"types,omitempty"`
	Tags   []string    `json:"tags,omitempty"`
	States []CardState `json:"states,omitempty"`
}

// Deck is a named, user-defined filter over flashcards. Membership is never
// materialized; counts are computed at read time.
type Deck struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Filters     *DeckFilters `json:"filters,omitempty"`
	UpdatedAtMS int64        `json:"updated_at_ms"`
}

// DeckWithCounts annotates a deck with its freshly computed counts.
type DeckWithCounts struct {
	Deck
	DueCount   int `json:"due_count"`
	TotalCount int `json:"total_count"`
}
