package models

import (
	"context"
	"time"
)

type Repository interface {
	RunInTx(ctx context.Context, fn func(Repository) error) error

	UpsertTopic(ctx context.Context, topic *Topic) error
	GetTopic(ctx context.Context, topicID string) (*Topic, error)
	ListTopics(ctx context.Context) ([]Topic, error)

	CreateCard(ctx context.Context, card *Card) error
	GetCard(ctx context.Context, cardID string) (*Card, error)
	GetCardsForTopic(ctx context.Context, topicID string) ([]Card, error)

	CreateFlashcard(ctx context.Context, flashcard *Flashcard) error
	GetFlashcard(ctx context.Context, flashcardID string) (*Flashcard, error)
	UpdateFlashcardSchedule(ctx context.Context, flashcard *Flashcard) error
	UpdateFlashcardStatus(ctx context.Context, flashcardID string, status CardStatus) error
	GetDueFlashcards(ctx context.Context, now time.Time) ([]*Flashcard, error)
	GetFlashcardsForTopic(ctx context.Context, topicID string) ([]Flashcard, error)
	AddReviewRecord(ctx context.Context, record *ReviewRecord) error

	GetProgress(ctx context.Context, topicID string) (*TopicProgress, error)
	SetFirstVisited(ctx context.Context, topicID string, visitedAt time.Time) error
	SetExplored(ctx context.Context, topicID string) error
	AddCapturedCard(ctx context.Context, topicID, cardID string) error
	ListExploredTopicIDs(ctx context.Context) ([]string, error)
}
