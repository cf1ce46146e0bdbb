package models

import "time"

const (
	// DefaultEaseFactor is the starting ease multiplier for a fresh flashcard.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the hard floor for the ease multiplier.
	MinEaseFactor = 1.3
)

// StudyState tracks how far a flashcard has progressed through spaced repetition.
type StudyState string

const (
	StudyStateNew       StudyState = "new"
	StudyStateAcquiring StudyState = "acquiring"
	StudyStateLearned   StudyState = "learned"
	StudyStateMastered  StudyState = "mastered"
)

// CardStatus marks whether a flashcard participates in scheduling.
type CardStatus string

const (
	StatusActive  CardStatus = "active"
	StatusSkipped CardStatus = "skipped"
)

// TopicState is the derived knowledge state of a topic. It is a projection
// over flashcards and progress, never stored.
type TopicState string

const (
	StateUndiscovered TopicState = "undiscovered"
	StateDiscovered   TopicState = "discovered"
	StateLearning     TopicState = "learning"
	StateStudied      TopicState = "studied"
	StateMastered     TopicState = "mastered"
	StateFading       TopicState = "fading"
)

type Flashcard struct {
	ID             string     `db:"id"`
	SourceCardID   string     `db:"source_card_id"`
	StudyState     StudyState `db:"study_state"`
	LeitnerBox     int        `db:"leitner_box"`
	EaseFactor     float64    `db:"ease_factor"`
	Repetitions    int        `db:"repetitions"`
	IntervalDays   int        `db:"interval_days"`
	NextReviewDate time.Time  `db:"next_review_date"`
	Status         CardStatus `db:"status"`
	LastReviewDate *time.Time `db:"last_review_date"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
}

// NewFlashcard applies scheduling defaults once, so read sites never have to.
// A fresh card is immediately due.
func NewFlashcard(id, sourceCardID string, now time.Time) *Flashcard {
	return &Flashcard{
		ID:             id,
		SourceCardID:   sourceCardID,
		StudyState:     StudyStateNew,
		LeitnerBox:     1,
		EaseFactor:     DefaultEaseFactor,
		Repetitions:    0,
		IntervalDays:   1,
		NextReviewDate: now,
		Status:         StatusActive,
		CreatedAt:      now,
	}
}

// Card is a content fragment produced by the generation collaborator.
// DeckID ties it to its topic; flashcards reference cards, not topics.
type Card struct {
	ID        string    `db:"id"`
	DeckID    string    `db:"deck_id"`
	Front     string    `db:"front"`
	Back      string    `db:"back"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

// Topic is one entry of the static reference dataset. Only its derived
// state changes over time.
type Topic struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Cluster string `db:"cluster" json:"cluster"`
}

type TopicProgress struct {
	TopicID       string     `db:"topic_id"`
	FirstVisited  *time.Time `db:"first_visited"`
	Explored      bool       `db:"explored"`
	CapturedCards []string   `db:"-"`
}

// ReviewRecord is one line of the append-only review history.
type ReviewRecord struct {
	ID           string    `db:"id"`
	FlashcardID  string    `db:"flashcard_id"`
	Quality      int       `db:"quality"`
	IntervalDays int       `db:"interval_days"`
	EaseFactor   float64   `db:"ease_factor"`
	ReviewedAt   time.Time `db:"reviewed_at"`
}

// TopicWithState pairs a topic with its classified state for display.
type TopicWithState struct {
	Topic Topic
	State TopicState
}
