package models

import (
	"math"
	"sort"
)

// dueSortKey defines the one total order for review display: dated cards
// ascending by due timestamp, cards with no due date after every dated card.
func dueSortKey(c Flashcard) int64 {
	if c.DueMS == nil {
		return math.MaxInt64
	}
	return *c.DueMS
}

// SortCardsByDue orders cards for display: overdue/soonest first, new cards
// (no due date) last. Ties break on card id so the order is stable across
// runs.
func SortCardsByDue(cards []CardWithEntry) {
	sort.SliceStable(cards, func(i, j int) bool {
		ki, kj := dueSortKey(cards[i].Flashcard), dueSortKey(cards[j].Flashcard)
		if ki != kj {
			return ki < kj
		}
		return cards[i].ID < cards[j].ID
	})
}
