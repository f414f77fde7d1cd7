package models

import "time"

// Direction says which way a flashcard is reviewed: forward tests recall of
// the word, reverse tests recall of the translation.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// CardState mirrors the FSRS scheduling states.
type CardState int

const (
	StateNew        CardState = 0
	StateLearning   CardState = 1
	StateReview     CardState = 2
	StateRelearning CardState = 3
)

// AllCardStates lists every scheduling state.
var AllCardStates = []CardState{StateNew, StateLearning, StateReview, StateRelearning}

// Rating is the user's self-assessed recall quality.
type Rating int

const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

// ParseRating maps the wire representation to a Rating.
func ParseRating(s string) (Rating, bool) {
	switch s {
	case "again":
		return RatingAgain, true
	case "hard":
		return RatingHard, true
	case "good":
		return RatingGood, true
	case "easy":
		return RatingEasy, true
	}
	return 0, false
}

// Flashcard is one review direction of a dictionary entry, plus its FSRS
// scheduling state. Due and LastReview are nil until first scheduled or
// reviewed; the *MS mirrors are kept redundantly for sort performance.
type Flashcard struct {
	ID            string     `json:"id"`
	EntryID       string     `json:"dictionary_entry_id"`
	Direction     Direction  `json:"direction"`
	Hidden        bool       `json:"is_hidden"`
	Difficulty    float64    `json:"difficulty"`
	Stability     float64    `json:"stability"`
	ElapsedDays   uint64     `json:"elapsed_days"`
	ScheduledDays uint64     `json:"scheduled_days"`
	Reps          uint64     `json:"reps"`
	Lapses        uint64     `json:"lapses"`
	State         CardState  `json:"state"`
	Due           *time.Time `json:"due,omitempty"`
	DueMS         *int64     `json:"due_timestamp_ms,omitempty"`
	LastReview    *time.Time `json:"last_review,omitempty"`
	LastReviewMS  *int64     `json:"last_review_timestamp_ms,omitempty"`
	UpdatedAtMS   int64      `json:"updated_at_ms"`
}

// SetDue assigns the due timestamp and its millisecond mirror together.
func (c *Flashcard) SetDue(t time.Time) {
	u := t.UTC()
	ms := u.UnixMilli()
	c.Due = &u
	c.DueMS = &ms
}

// SetLastReview assigns the last-review timestamp and its mirror together.
func (c *Flashcard) SetLastReview(t time.Time) {
	u := t.UTC()
	ms := u.UnixMilli()
	c.LastReview = &u
	c.LastReviewMS = &ms
}

// CardWithEntry is a flashcard joined with its parsed dictionary entry.
type CardWithEntry struct {
	Flashcard
	Entry DictionaryEntry `json:"entry"`
}
