package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulalearn/nebula/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return newWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func flashcardColumns() []string {
	return []string{"id", "source_card_id", "study_state", "leitner_box", "ease_factor", "repetitions", "interval_days", "next_review_date", "status", "last_review_date", "created_at", "updated_at"}
}

func TestGetDueFlashcardsOrdersOldestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(flashcardColumns()).
		AddRow("f-oldest", "c1", "learned", 3, 2.5, 4, 14, testNow.AddDate(0, 0, -10), "active", testNow.AddDate(0, 0, -24), testNow.AddDate(0, 0, -60), nil).
		AddRow("f-newer", "c2", "acquiring", 1, 2.5, 1, 1, testNow.AddDate(0, 0, -1), "active", nil, testNow.AddDate(0, 0, -2), nil)

	mock.ExpectQuery(`WHERE status = 'active' AND next_review_date <= \$1\s+ORDER BY next_review_date ASC`).
		WithArgs(testNow).
		WillReturnRows(rows)

	due, err := repo.GetDueFlashcards(context.Background(), testNow)
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, "f-oldest", due[0].ID)
	assert.Equal(t, "f-newer", due[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFlashcardNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM flashcards\s+WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(flashcardColumns()))

	_, err := repo.GetFlashcard(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFlashcardsForTopicJoinsThroughCards(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(flashcardColumns()).
		AddRow("f1", "c1", "learned", 2, 2.4, 3, 6, testNow.AddDate(0, 0, 2), "active", testNow.AddDate(0, 0, -4), testNow.AddDate(0, 0, -30), nil)

	mock.ExpectQuery(`JOIN cards c ON c\.id = f\.source_card_id\s+WHERE c\.deck_id = \$1`).
		WithArgs("topic-1").
		WillReturnRows(rows)

	cards, err := repo.GetFlashcardsForTopic(context.Background(), "topic-1")
	require.NoError(t, err)

	require.Len(t, cards, 1)
	assert.Equal(t, "f1", cards[0].ID)
	assert.Equal(t, models.StudyStateLearned, cards[0].StudyState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFlashcardScheduleBuildsExpectedUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)

	lastReview := testNow
	flashcard := &models.Flashcard{
		ID:             "f1",
		StudyState:     models.StudyStateLearned,
		LeitnerBox:     3,
		EaseFactor:     2.52,
		Repetitions:    3,
		IntervalDays:   14,
		NextReviewDate: testNow.AddDate(0, 0, 14),
		LastReviewDate: &lastReview,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE flashcards SET study_state = $1, leitner_box = $2, ease_factor = $3, repetitions = $4, interval_days = $5, next_review_date = $6, last_review_date = $7, updated_at = $8 WHERE id = $9")).
		WithArgs(string(flashcard.StudyState), flashcard.LeitnerBox, flashcard.EaseFactor, flashcard.Repetitions, flashcard.IntervalDays, flashcard.NextReviewDate, lastReview, sqlmock.AnyArg(), flashcard.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFlashcardSchedule(context.Background(), flashcard)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFlashcardStatusMissingCard(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE flashcards SET status = \$1`).
		WithArgs(string(models.StatusSkipped), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFlashcardStatus(context.Background(), "missing", models.StatusSkipped)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
