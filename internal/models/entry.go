package models

import "time"

// WordType classifies a dictionary entry.
type WordType string

const (
	WordTypeNoun       WordType = "noun"
	WordTypeVerb       WordType = "verb"
	WordTypeParticle   WordType = "particle"
	WordTypeExpression WordType = "expression"
)

// AllWordTypes lists every word type, in display order.
var AllWordTypes = []WordType{WordTypeNoun, WordTypeVerb, WordTypeParticle, WordTypeExpression}

// Valid reports whether t is one of the known word types.
func (t WordType) Valid() bool {
	switch t {
	case WordTypeNoun, WordTypeVerb, WordTypeParticle, WordTypeExpression:
		return true
	}
	return false
}

// Antonym is a word with the opposite meaning of an entry.
type Antonym struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
}

// Example is a usage sentence for an entry.
type Example struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation,omitempty"`
}

// Morphology holds derived forms of an entry.
type Morphology struct {
	Plurals      []string `json:"plurals,omitempty"`
	VerbForm     string   `json:"verb_form,omitempty"`
	PresentTense string   `json:"present_tense,omitempty"`
	Masdar       string   `json:"masdar,omitempty"`
}

// DictionaryEntry is a vocabulary item. Root, Tags, Antonyms, Examples and
// Morphology are stored as JSON text columns and validated on read.
type DictionaryEntry struct {
	ID          string      `json:"id"`
	Word        string      `json:"word"`
	Translation string      `json:"translation"`
	Definition  string      `json:"definition,omitempty"`
	Type        WordType    `json:"type"`
	Root        []string    `json:"root,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Antonyms    []Antonym   `json:"antonyms,omitempty"`
	Examples    []Example   `json:"examples,omitempty"`
	Morphology  *Morphology `json:"morphology,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CreatedAtMS int64       `json:"created_at_ms"`
	UpdatedAt   time.Time   `json:"updated_at"`
	UpdatedAtMS int64       `json:"updated_at_ms"`
}

// HasAnyTag reports whether the entry carries at least one of the given tags.
func (e DictionaryEntry) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range e.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
