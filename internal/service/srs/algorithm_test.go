package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulalearn/nebula/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSchedule(t *testing.T) {
	tests := []struct {
		name         string
		quality      Quality
		repetitions  int
		easeFactor   float64
		intervalDays int
		expected     Review
	}{
		{
			name:         "again resets repetitions and interval",
			quality:      QualityAgain,
			repetitions:  5,
			easeFactor:   2.5,
			intervalDays: 42,
			expected:     Review{Repetitions: 0, IntervalDays: 1, EaseFactor: 2.3},
		},
		{
			name:         "again enforces ease floor",
			quality:      QualityAgain,
			repetitions:  1,
			easeFactor:   1.35,
			intervalDays: 3,
			expected:     Review{Repetitions: 0, IntervalDays: 1, EaseFactor: 1.3},
		},
		{
			name:         "hard keeps repetitions and grows interval slightly",
			quality:      QualityHard,
			repetitions:  3,
			easeFactor:   2.5,
			intervalDays: 10,
			expected:     Review{Repetitions: 3, IntervalDays: 12, EaseFactor: 2.35},
		},
		{
			name:         "hard never drops interval below one day",
			quality:      QualityHard,
			repetitions:  0,
			easeFactor:   1.3,
			intervalDays: 1,
			expected:     Review{Repetitions: 0, IntervalDays: 1, EaseFactor: 1.3},
		},
		{
			name:         "good first repetition",
			quality:      QualityGood,
			repetitions:  0,
			easeFactor:   2.5,
			intervalDays: 1,
			expected:     Review{Repetitions: 1, IntervalDays: 1, EaseFactor: 2.52},
		},
		{
			name:         "good second repetition",
			quality:      QualityGood,
			repetitions:  1,
			easeFactor:   2.52,
			intervalDays: 1,
			expected:     Review{Repetitions: 2, IntervalDays: 6, EaseFactor: 2.54},
		},
		{
			name:         "good later repetition multiplies by ease",
			quality:      QualityGood,
			repetitions:  2,
			easeFactor:   2.54,
			intervalDays: 6,
			expected:     Review{Repetitions: 3, IntervalDays: 15, EaseFactor: 2.56},
		},
		{
			name:         "easy first repetition",
			quality:      QualityEasy,
			repetitions:  0,
			easeFactor:   2.5,
			intervalDays: 1,
			expected:     Review{Repetitions: 1, IntervalDays: 4, EaseFactor: 2.65},
		},
		{
			name:         "easy second repetition",
			quality:      QualityEasy,
			repetitions:  1,
			easeFactor:   2.65,
			intervalDays: 4,
			expected:     Review{Repetitions: 2, IntervalDays: 10, EaseFactor: 2.8},
		},
		{
			name:         "easy later repetition gets the 1.3 bonus",
			quality:      QualityEasy,
			repetitions:  2,
			easeFactor:   2.5,
			intervalDays: 10,
			expected:     Review{Repetitions: 3, IntervalDays: 33, EaseFactor: 2.65},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := Schedule(tt.quality, tt.repetitions, tt.easeFactor, tt.intervalDays, testNow)
			require.NoError(t, err)

			assert.Equal(t, tt.expected.Repetitions, review.Repetitions)
			assert.Equal(t, tt.expected.IntervalDays, review.IntervalDays)
			assert.InDelta(t, tt.expected.EaseFactor, review.EaseFactor, 0.0001)
			assert.Equal(t, testNow.AddDate(0, 0, tt.expected.IntervalDays), review.NextReviewDate)
		})
	}
}

func TestScheduleRejectsInvalidQuality(t *testing.T) {
	for _, quality := range []Quality{-1, 4, 100} {
		_, err := Schedule(quality, 0, models.DefaultEaseFactor, 1, testNow)
		assert.ErrorIs(t, err, ErrInvalidQuality)
	}
}

// Fresh card rated Good, Good, Again: the exact sequence every new card
// goes through when learning starts well and then lapses.
func TestScheduleFreshCardSequence(t *testing.T) {
	review, err := Schedule(QualityGood, 0, models.DefaultEaseFactor, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, review.Repetitions)
	assert.Equal(t, 1, review.IntervalDays)
	assert.InDelta(t, 2.52, review.EaseFactor, 0.0001)

	review, err = Schedule(QualityGood, review.Repetitions, review.EaseFactor, review.IntervalDays, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, review.Repetitions)
	assert.Equal(t, 6, review.IntervalDays)
	assert.InDelta(t, 2.54, review.EaseFactor, 0.0001)

	review, err = Schedule(QualityAgain, review.Repetitions, review.EaseFactor, review.IntervalDays, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, review.Repetitions)
	assert.Equal(t, 1, review.IntervalDays)
	assert.InDelta(t, 2.34, review.EaseFactor, 0.0001)
}

func TestScheduleEasyIntervalsNeverShrink(t *testing.T) {
	repetitions, easeFactor, intervalDays := 0, models.DefaultEaseFactor, 1

	previous := 0
	for i := 0; i < 12; i++ {
		review, err := Schedule(QualityEasy, repetitions, easeFactor, intervalDays, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, review.IntervalDays, previous)

		previous = review.IntervalDays
		repetitions, easeFactor, intervalDays = review.Repetitions, review.EaseFactor, review.IntervalDays
	}
}

func TestScheduleEaseFloorHolds(t *testing.T) {
	for _, quality := range []Quality{QualityAgain, QualityHard, QualityGood} {
		easeFactor := models.MinEaseFactor
		for i := 0; i < 10; i++ {
			review, err := Schedule(quality, 3, easeFactor, 7, testNow)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, review.EaseFactor, models.MinEaseFactor)
			easeFactor = review.EaseFactor
		}
	}
}

func TestLeitnerBoxForInterval(t *testing.T) {
	tests := []struct {
		intervalDays int
		expected     int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{6, 2},
		{7, 3},
		{14, 4},
		{29, 4},
		{30, 5},
		{59, 5},
		{60, 6},
		{365, 6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LeitnerBoxForInterval(tt.intervalDays), "interval %d days", tt.intervalDays)
	}
}

func TestNextStudyState(t *testing.T) {
	assert.Equal(t, models.StudyStateAcquiring, NextStudyState(0, 1))
	assert.Equal(t, models.StudyStateAcquiring, NextStudyState(1, 1))
	assert.Equal(t, models.StudyStateLearned, NextStudyState(2, 3))
	assert.Equal(t, models.StudyStateMastered, NextStudyState(5, 6))
	// A lapse resets repetitions but a mastered-length interval still counts.
	assert.Equal(t, models.StudyStateAcquiring, NextStudyState(0, 1))
}

func TestDueQueue(t *testing.T) {
	card := func(id string, due time.Time, status models.CardStatus) models.Flashcard {
		return models.Flashcard{ID: id, NextReviewDate: due, Status: status}
	}

	cards := []models.Flashcard{
		card("minus-five", testNow.AddDate(0, 0, -5), models.StatusActive),
		card("minus-one", testNow.AddDate(0, 0, -1), models.StatusActive),
		card("plus-three", testNow.AddDate(0, 0, 3), models.StatusActive),
		card("minus-ten", testNow.AddDate(0, 0, -10), models.StatusActive),
		card("skipped", testNow.AddDate(0, 0, -20), models.StatusSkipped),
	}

	due := DueQueue(cards, testNow)

	require.Len(t, due, 3)
	assert.Equal(t, "minus-ten", due[0].ID)
	assert.Equal(t, "minus-five", due[1].ID)
	assert.Equal(t, "minus-one", due[2].ID)
}

func TestDueQueueIncludesCardsDueExactlyNow(t *testing.T) {
	cards := []models.Flashcard{
		{ID: "exact", NextReviewDate: testNow, Status: models.StatusActive},
	}

	due := DueQueue(cards, testNow)
	require.Len(t, due, 1)
	assert.Equal(t, "exact", due[0].ID)
}
