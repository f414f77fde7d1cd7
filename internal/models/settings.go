package models

// AntonymsMode controls how antonyms appear during review.
type AntonymsMode string

const (
	AntonymsHidden AntonymsMode = "hidden"
	AntonymsHint   AntonymsMode = "hint"
	AntonymsAnswer AntonymsMode = "answer"
)

// Valid reports whether m is a known mode.
func (m AntonymsMode) Valid() bool {
	switch m {
	case AntonymsHidden, AntonymsHint, AntonymsAnswer:
		return true
	}
	return false
}

// Settings is the singleton per-user review presentation record.
type Settings struct {
	ShowReverseFlashcards bool         `json:"show_reverse_flashcards"`
	ShowAntonymsMode      AntonymsMode `json:"show_antonyms_mode"`
	UpdatedAtMS           int64        `json:"updated_at_ms"`
}

// DefaultSettings is what a fresh database reports before any upsert.
func DefaultSettings() Settings {
	return Settings{ShowReverseFlashcards: false, ShowAntonymsMode: AntonymsHidden}
}
