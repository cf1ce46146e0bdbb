package srs

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/nebulalearn/nebula/internal/models"
)

// Quality is the recall rating of a single review.
type Quality int

const (
	QualityAgain Quality = 0
	QualityHard  Quality = 1
	QualityGood  Quality = 2
	QualityEasy  Quality = 3
)

// ErrInvalidQuality is returned when a rating outside 0..3 is passed in.
var ErrInvalidQuality = errors.New("quality must be between 0 (again) and 3 (easy)")

// Review is the scheduling triple produced by one application of Schedule,
// plus the resulting due date.
type Review struct {
	NextReviewDate time.Time
	IntervalDays   int
	EaseFactor     float64
	Repetitions    int
}

// Schedule applies one review of the given quality to a card's current
// scheduling state and returns the next one. SM-2 variant: intervals use
// nearest-integer rounding, the ease factor never drops below
// models.MinEaseFactor. The clock is injected; Schedule never reads it.
func Schedule(quality Quality, repetitions int, easeFactor float64, intervalDays int, now time.Time) (Review, error) {
	if quality < QualityAgain || quality > QualityEasy {
		return Review{}, fmt.Errorf("schedule review (quality: %d): %w", quality, ErrInvalidQuality)
	}

	review := Review{
		IntervalDays: intervalDays,
		EaseFactor:   easeFactor,
		Repetitions:  repetitions,
	}

	switch quality {
	case QualityAgain:
		review.Repetitions = 0
		review.IntervalDays = 1
		review.EaseFactor = math.Max(models.MinEaseFactor, easeFactor-0.2)
	case QualityHard:
		review.IntervalDays = max(1, round(float64(intervalDays)*1.2))
		review.EaseFactor = math.Max(models.MinEaseFactor, easeFactor-0.15)
	case QualityGood:
		review.Repetitions = repetitions + 1
		switch review.Repetitions {
		case 1:
			review.IntervalDays = 1
		case 2:
			review.IntervalDays = 6
		default:
			review.IntervalDays = round(float64(intervalDays) * easeFactor)
		}
		review.EaseFactor = math.Max(models.MinEaseFactor, easeFactor+0.1-0.08)
	case QualityEasy:
		review.Repetitions = repetitions + 1
		switch review.Repetitions {
		case 1:
			review.IntervalDays = 4
		case 2:
			review.IntervalDays = 10
		default:
			review.IntervalDays = round(float64(intervalDays) * easeFactor * 1.3)
		}
		// Easy only grows the ease factor, so no floor is needed here.
		review.EaseFactor = easeFactor + 0.15
	}

	review.NextReviewDate = now.AddDate(0, 0, review.IntervalDays)

	return review, nil
}

func round(v float64) int {
	return int(math.Round(v))
}

// LeitnerBoxForInterval maps a review interval onto the coarse six-box
// scale. Box 6 means mastered.
func LeitnerBoxForInterval(intervalDays int) int {
	switch {
	case intervalDays < 3:
		return 1
	case intervalDays < 7:
		return 2
	case intervalDays < 14:
		return 3
	case intervalDays < 30:
		return 4
	case intervalDays < 60:
		return 5
	default:
		return 6
	}
}

// NextStudyState derives a card's study state after a review. A lapsed card
// drops back to acquiring, never to new.
func NextStudyState(repetitions, leitnerBox int) models.StudyState {
	switch {
	case leitnerBox >= 6:
		return models.StudyStateMastered
	case repetitions >= 2:
		return models.StudyStateLearned
	default:
		return models.StudyStateAcquiring
	}
}

// DueQueue returns the active flashcards due at the given moment, most
// overdue first. Reviewing must always surface the oldest-due card.
func DueQueue(cards []models.Flashcard, now time.Time) []models.Flashcard {
	due := make([]models.Flashcard, 0, len(cards))
	for _, card := range cards {
		if card.Status != models.StatusActive {
			continue
		}
		if card.NextReviewDate.After(now) {
			continue
		}
		due = append(due, card)
	}

	slices.SortStableFunc(due, func(a, b models.Flashcard) int {
		return a.NextReviewDate.Compare(b.NextReviewDate)
	})

	return due
}
