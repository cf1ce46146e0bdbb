package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nebulalearn/nebula/internal/models"
)

// GetProgress returns nil without an error when no progress row exists: a
// topic that was never touched has no record, and the classifier treats
// that as undiscovered.
func (r *Postgres) GetProgress(ctx context.Context, topicID string) (*models.TopicProgress, error) {
	query := `SELECT topic_id, first_visited, explored FROM topic_progress WHERE topic_id = $1`

	var progress models.TopicProgress
	err := r.GetContext(ctx, &progress, query, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress (topic_id: %s): %w", topicID, err)
	}

	capturedQuery := `SELECT card_id FROM captured_fragments WHERE topic_id = $1 ORDER BY captured_at`
	err = r.SelectContext(ctx, &progress.CapturedCards, capturedQuery, topicID)
	if err != nil {
		return nil, fmt.Errorf("query captured fragments (topic_id: %s): %w", topicID, err)
	}

	return &progress, nil
}

// SetFirstVisited records the first visit and keeps it on repeats.
func (r *Postgres) SetFirstVisited(ctx context.Context, topicID string, visitedAt time.Time) error {
	query := `
		INSERT INTO topic_progress (topic_id, first_visited, explored)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (topic_id) DO UPDATE
		SET first_visited = COALESCE(topic_progress.first_visited, EXCLUDED.first_visited)
	`

	_, err := r.ExecContext(ctx, query, topicID, visitedAt)
	if err != nil {
		return fmt.Errorf("set first visited (topic_id: %s, visited_at: %s): %w", topicID, visitedAt.Format(time.RFC3339), err)
	}
	return nil
}

func (r *Postgres) SetExplored(ctx context.Context, topicID string) error {
	query := `
		INSERT INTO topic_progress (topic_id, explored)
		VALUES ($1, TRUE)
		ON CONFLICT (topic_id) DO UPDATE SET explored = TRUE
	`

	_, err := r.ExecContext(ctx, query, topicID)
	if err != nil {
		return fmt.Errorf("set explored (topic_id: %s): %w", topicID, err)
	}
	return nil
}

func (r *Postgres) AddCapturedCard(ctx context.Context, topicID, cardID string) error {
	ensure := `
		INSERT INTO topic_progress (topic_id, explored)
		VALUES ($1, FALSE)
		ON CONFLICT (topic_id) DO NOTHING
	`
	if _, err := r.ExecContext(ctx, ensure, topicID); err != nil {
		return fmt.Errorf("ensure progress row (topic_id: %s): %w", topicID, err)
	}

	query := `
		INSERT INTO captured_fragments (topic_id, card_id, captured_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (topic_id, card_id) DO NOTHING
	`
	if _, err := r.ExecContext(ctx, query, topicID, cardID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add captured card (topic_id: %s, card_id: %s): %w", topicID, cardID, err)
	}
	return nil
}

func (r *Postgres) ListExploredTopicIDs(ctx context.Context) ([]string, error) {
	query := `SELECT topic_id FROM topic_progress WHERE explored = TRUE`

	var topicIDs []string
	err := r.SelectContext(ctx, &topicIDs, query)
	if err != nil {
		return nil, fmt.Errorf("list explored topics: %w", err)
	}

	return topicIDs, nil
}
