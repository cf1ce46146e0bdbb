package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nebulalearn/nebula/internal/models"
)

func (r *Postgres) CreateCard(ctx context.Context, card *models.Card) error {
	query := r.psql.Insert("cards").
		Columns("id", "deck_id", "front", "back", "source", "created_at").
		Values(card.ID, card.DeckID, card.Front, card.Back, card.Source, card.CreatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (card_id: %s): %w", card.ID, err)
	}

	_, err = r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("create card (card_id: %s, deck_id: %s): %w", card.ID, card.DeckID, err)
	}
	return nil
}

func (r *Postgres) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	query := `SELECT id, deck_id, front, back, source, created_at FROM cards WHERE id = $1`

	var card models.Card
	err := r.GetContext(ctx, &card, query, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get card (card_id: %s): %w", cardID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card (card_id: %s): %w", cardID, err)
	}

	return &card, nil
}

func (r *Postgres) GetCardsForTopic(ctx context.Context, topicID string) ([]models.Card, error) {
	query := `SELECT id, deck_id, front, back, source, created_at FROM cards WHERE deck_id = $1 ORDER BY created_at`

	var cards []models.Card
	err := r.SelectContext(ctx, &cards, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("query cards for topic (topic_id: %s): %w", topicID, err)
	}

	return cards, nil
}
