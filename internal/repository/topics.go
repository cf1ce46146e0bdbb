package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nebulalearn/nebula/internal/models"
)

func (r *Postgres) UpsertTopic(ctx context.Context, topic *models.Topic) error {
	query := r.psql.Insert("topics").
		Columns("id", "name", "cluster").
		Values(topic.ID, topic.Name, topic.Cluster).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, cluster = EXCLUDED.cluster")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (topic_id: %s): %w", topic.ID, err)
	}

	_, err = r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("upsert topic (topic_id: %s, name: %s): %w", topic.ID, topic.Name, err)
	}
	return nil
}

func (r *Postgres) GetTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	query := `SELECT id, name, cluster FROM topics WHERE id = $1`

	var topic models.Topic
	err := r.GetContext(ctx, &topic, query, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get topic (topic_id: %s): %w", topicID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get topic (topic_id: %s): %w", topicID, err)
	}

	return &topic, nil
}

func (r *Postgres) ListTopics(ctx context.Context) ([]models.Topic, error) {
	query := `SELECT id, name, cluster FROM topics ORDER BY cluster, name`

	var topics []models.Topic
	err := r.SelectContext(ctx, &topics, query)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	return topics, nil
}
