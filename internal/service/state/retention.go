package state

import (
	"math"
	"time"

	"github.com/nebulalearn/nebula/internal/models"
)

// CriticalOverdueDays is how far past due a card can slip before its topic
// starts fading.
const CriticalOverdueDays = 7

// DaysOverdue returns whole days past the card's due date, negative when the
// card is not yet due. A card without a due date is treated as not overdue,
// so a data gap can never manufacture a fading topic.
func DaysOverdue(card models.Flashcard, now time.Time) int {
	if card.NextReviewDate.IsZero() {
		return 0
	}
	return int(math.Floor(now.Sub(card.NextReviewDate).Hours() / 24))
}

// IsSRSAggregate reports whether a card counts toward topic-level retention
// and overdue math. New and acquiring cards have not entered spaced
// repetition yet; skipped cards are out entirely.
func IsSRSAggregate(card models.Flashcard) bool {
	if card.Status != models.StatusActive {
		return false
	}
	return card.StudyState == models.StudyStateLearned || card.StudyState == models.StudyStateMastered
}

func countSRSAggregate(cards []models.Flashcard) int {
	count := 0
	for _, card := range cards {
		if IsSRSAggregate(card) {
			count++
		}
	}
	return count
}

// RetentionScore is the fraction of a topic's SRS-aggregate cards that are
// healthy: mastered, or not past due. Zero when the topic has no aggregate
// cards.
func RetentionScore(cards []models.Flashcard, now time.Time) float64 {
	total := 0
	healthy := 0
	for _, card := range cards {
		if !IsSRSAggregate(card) {
			continue
		}
		total++
		if card.StudyState == models.StudyStateMastered || DaysOverdue(card, now) <= 0 {
			healthy++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(healthy) / float64(total)
}

// HasCriticallyOverdue reports whether any SRS-aggregate card is more than
// CriticalOverdueDays past due.
func HasCriticallyOverdue(cards []models.Flashcard, now time.Time) bool {
	for _, card := range cards {
		if !IsSRSAggregate(card) {
			continue
		}
		if DaysOverdue(card, now) > CriticalOverdueDays {
			return true
		}
	}
	return false
}
