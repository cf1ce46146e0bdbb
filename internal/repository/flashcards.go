package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nebulalearn/nebula/internal/models"
)

func (r *Postgres) CreateFlashcard(ctx context.Context, flashcard *models.Flashcard) error {
	query := r.psql.Insert("flashcards").
		Columns("id", "source_card_id", "study_state", "leitner_box", "ease_factor", "repetitions", "interval_days", "next_review_date", "status", "created_at").
		Values(flashcard.ID, flashcard.SourceCardID, flashcard.StudyState, flashcard.LeitnerBox, flashcard.EaseFactor, flashcard.Repetitions, flashcard.IntervalDays, flashcard.NextReviewDate, flashcard.Status, flashcard.CreatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (flashcard_id: %s): %w", flashcard.ID, err)
	}

	_, err = r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("create flashcard (flashcard_id: %s, source_card_id: %s): %w", flashcard.ID, flashcard.SourceCardID, err)
	}
	return nil
}

func (r *Postgres) GetFlashcard(ctx context.Context, flashcardID string) (*models.Flashcard, error) {
	query := `
		SELECT id, source_card_id, study_state, leitner_box, ease_factor, repetitions, interval_days, next_review_date, status, last_review_date, created_at, updated_at
		FROM flashcards
		WHERE id = $1
	`

	var flashcard models.Flashcard
	err := r.GetContext(ctx, &flashcard, query, flashcardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get flashcard (flashcard_id: %s): %w", flashcardID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get flashcard (flashcard_id: %s): %w", flashcardID, err)
	}

	return &flashcard, nil
}

func (r *Postgres) UpdateFlashcardSchedule(ctx context.Context, flashcard *models.Flashcard) error {
	query := r.psql.Update("flashcards").
		Set("study_state", flashcard.StudyState).
		Set("leitner_box", flashcard.LeitnerBox).
		Set("ease_factor", flashcard.EaseFactor).
		Set("repetitions", flashcard.Repetitions).
		Set("interval_days", flashcard.IntervalDays).
		Set("next_review_date", flashcard.NextReviewDate).
		Set("last_review_date", flashcard.LastReviewDate).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", flashcard.ID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (flashcard_id: %s): %w", flashcard.ID, err)
	}

	_, err = r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update flashcard schedule (flashcard_id: %s, repetitions: %d): %w", flashcard.ID, flashcard.Repetitions, err)
	}
	return nil
}

func (r *Postgres) UpdateFlashcardStatus(ctx context.Context, flashcardID string, status models.CardStatus) error {
	query := r.psql.Update("flashcards").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", flashcardID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (flashcard_id: %s): %w", flashcardID, err)
	}

	result, err := r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update flashcard status (flashcard_id: %s, status: %s): %w", flashcardID, status, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("update flashcard status (flashcard_id: %s): %w", flashcardID, models.ErrNotFound)
	}
	return nil
}

// GetDueFlashcards returns active cards due at the given moment, the most
// overdue first. The ordering is a fairness requirement, not cosmetics.
func (r *Postgres) GetDueFlashcards(ctx context.Context, now time.Time) ([]*models.Flashcard, error) {
	query := `
		SELECT id, source_card_id, study_state, leitner_box, ease_factor, repetitions, interval_days, next_review_date, status, last_review_date, created_at, updated_at
		FROM flashcards
		WHERE status = 'active' AND next_review_date <= $1
		ORDER BY next_review_date ASC
	`

	var flashcards []*models.Flashcard
	err := r.SelectContext(ctx, &flashcards, query, now)
	if err != nil {
		return nil, fmt.Errorf("query due flashcards (cutoff_time: %s): %w", now.Format(time.RFC3339), err)
	}

	return flashcards, nil
}

func (r *Postgres) GetFlashcardsForTopic(ctx context.Context, topicID string) ([]models.Flashcard, error) {
	query := `
		SELECT f.id, f.source_card_id, f.study_state, f.leitner_box, f.ease_factor, f.repetitions, f.interval_days, f.next_review_date, f.status, f.last_review_date, f.created_at, f.updated_at
		FROM flashcards f
		JOIN cards c ON c.id = f.source_card_id
		WHERE c.deck_id = $1
	`

	var flashcards []models.Flashcard
	err := r.SelectContext(ctx, &flashcards, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("query flashcards for topic (topic_id: %s): %w", topicID, err)
	}

	return flashcards, nil
}

func (r *Postgres) AddReviewRecord(ctx context.Context, record *models.ReviewRecord) error {
	query := r.psql.Insert("review_history").
		Columns("id", "flashcard_id", "quality", "interval_days", "ease_factor", "reviewed_at").
		Values(record.ID, record.FlashcardID, record.Quality, record.IntervalDays, record.EaseFactor, record.ReviewedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (flashcard_id: %s): %w", record.FlashcardID, err)
	}

	_, err = r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("add review record (flashcard_id: %s, reviewed_at: %s): %w", record.FlashcardID, record.ReviewedAt.Format(time.RFC3339), err)
	}
	return nil
}
