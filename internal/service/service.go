package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/nebulalearn/nebula/internal/models"
	"github.com/nebulalearn/nebula/internal/service/srs"
	"github.com/nebulalearn/nebula/internal/service/state"
	"github.com/nebulalearn/nebula/pkg/generator"
)

// Generator produces flashcard content for a topic. The service only
// consumes its output and never depends on how it was produced.
type Generator interface {
	Generate(ctx context.Context, params generator.GenerateRequest) ([]generator.GeneratedCard, error)
}

type Service struct {
	repo    models.Repository
	gen     Generator
	entropy *rand.Rand
}

func NewService(repo models.Repository, gen Generator) *Service {
	return &Service{
		repo:    repo,
		gen:     gen,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

// ReviewFlashcard applies one rated review to a card. The read-modify-write
// runs in a transaction keyed by the flashcard id, so concurrent reviews of
// different cards never clobber each other.
func (s *Service) ReviewFlashcard(ctx context.Context, flashcardID string, quality srs.Quality, now time.Time) (*models.Flashcard, error) {
	var updated *models.Flashcard

	err := s.repo.RunInTx(ctx, func(repo models.Repository) error {
		flashcard, err := repo.GetFlashcard(ctx, flashcardID)
		if err != nil {
			return fmt.Errorf("get flashcard (flashcard_id: %s): %w", flashcardID, err)
		}

		if flashcard.Status != models.StatusActive {
			return fmt.Errorf("flashcard is not active (flashcard_id: %s, status: %s)", flashcardID, flashcard.Status)
		}

		review, err := srs.Schedule(quality, flashcard.Repetitions, flashcard.EaseFactor, flashcard.IntervalDays, now)
		if err != nil {
			return fmt.Errorf("schedule review (flashcard_id: %s): %w", flashcardID, err)
		}

		flashcard.Repetitions = review.Repetitions
		flashcard.EaseFactor = review.EaseFactor
		flashcard.IntervalDays = review.IntervalDays
		flashcard.NextReviewDate = review.NextReviewDate
		flashcard.LeitnerBox = srs.LeitnerBoxForInterval(review.IntervalDays)
		flashcard.StudyState = srs.NextStudyState(review.Repetitions, flashcard.LeitnerBox)
		flashcard.LastReviewDate = &now

		if err := repo.UpdateFlashcardSchedule(ctx, flashcard); err != nil {
			return fmt.Errorf("update flashcard schedule (flashcard_id: %s): %w", flashcardID, err)
		}

		updated = flashcard
		return nil
	})
	if err != nil {
		return nil, err
	}

	record := &models.ReviewRecord{
		ID:           s.newID(now),
		FlashcardID:  flashcardID,
		Quality:      int(quality),
		IntervalDays: updated.IntervalDays,
		EaseFactor:   updated.EaseFactor,
		ReviewedAt:   now,
	}
	if err := s.repo.AddReviewRecord(ctx, record); err != nil {
		zap.S().Error("add review record", zap.Error(err), zap.String("flashcard_id", flashcardID))
	}

	return updated, nil
}

func (s *Service) DueFlashcards(ctx context.Context, now time.Time) ([]*models.Flashcard, error) {
	flashcards, err := s.repo.GetDueFlashcards(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("get due flashcards: %w", err)
	}

	return flashcards, nil
}

// SkipFlashcard removes a card from scheduling and state derivation. The
// skip is reversible through RestoreFlashcard.
func (s *Service) SkipFlashcard(ctx context.Context, flashcardID string) error {
	if err := s.repo.UpdateFlashcardStatus(ctx, flashcardID, models.StatusSkipped); err != nil {
		return fmt.Errorf("skip flashcard (flashcard_id: %s): %w", flashcardID, err)
	}
	return nil
}

func (s *Service) RestoreFlashcard(ctx context.Context, flashcardID string) error {
	if err := s.repo.UpdateFlashcardStatus(ctx, flashcardID, models.StatusActive); err != nil {
		return fmt.Errorf("restore flashcard (flashcard_id: %s): %w", flashcardID, err)
	}
	return nil
}

// VisitTopic records the first time a topic is opened. Repeat visits keep
// the original timestamp.
func (s *Service) VisitTopic(ctx context.Context, topicID string, now time.Time) error {
	if _, err := s.repo.GetTopic(ctx, topicID); err != nil {
		return fmt.Errorf("get topic (topic_id: %s): %w", topicID, err)
	}

	if err := s.repo.SetFirstVisited(ctx, topicID, now); err != nil {
		return fmt.Errorf("set first visited (topic_id: %s): %w", topicID, err)
	}
	return nil
}

// MarkExplored flags a topic revealed by the constellation layer without
// being opened.
func (s *Service) MarkExplored(ctx context.Context, topicID string) error {
	if _, err := s.repo.GetTopic(ctx, topicID); err != nil {
		return fmt.Errorf("get topic (topic_id: %s): %w", topicID, err)
	}

	if err := s.repo.SetExplored(ctx, topicID); err != nil {
		return fmt.Errorf("set explored (topic_id: %s): %w", topicID, err)
	}
	return nil
}

func (s *Service) CaptureFragment(ctx context.Context, topicID, cardID string) error {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("get card (card_id: %s): %w", cardID, err)
	}
	if card.DeckID != topicID {
		return fmt.Errorf("card belongs to another topic (card_id: %s, deck_id: %s, topic_id: %s)", cardID, card.DeckID, topicID)
	}

	if err := s.repo.AddCapturedCard(ctx, topicID, cardID); err != nil {
		return fmt.Errorf("add captured card (topic_id: %s, card_id: %s): %w", topicID, cardID, err)
	}
	return nil
}

// GenerateFlashcards asks the generation collaborator for new content cards
// on a topic and enrolls each of them as an immediately due flashcard.
func (s *Service) GenerateFlashcards(ctx context.Context, topicID string, count int, now time.Time) ([]*models.Flashcard, error) {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("get topic (topic_id: %s): %w", topicID, err)
	}

	existing, err := s.repo.GetCardsForTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("get cards for topic (topic_id: %s): %w", topicID, err)
	}

	content := topic.Name
	for _, card := range existing {
		content += "\n" + card.Front + " / " + card.Back
	}

	generated, err := s.gen.Generate(ctx, generator.GenerateRequest{
		TopicName: topic.Name,
		Content:   content,
		Count:     count,
	})
	if err != nil {
		return nil, fmt.Errorf("generate cards (topic_id: %s): %w", topicID, err)
	}

	flashcards := make([]*models.Flashcard, 0, len(generated))
	err = s.repo.RunInTx(ctx, func(repo models.Repository) error {
		for _, gen := range generated {
			card := &models.Card{
				ID:        s.newID(now),
				DeckID:    topicID,
				Front:     gen.Front,
				Back:      gen.Back,
				Source:    "generated",
				CreatedAt: now,
			}
			if err := repo.CreateCard(ctx, card); err != nil {
				return fmt.Errorf("create card (topic_id: %s): %w", topicID, err)
			}

			flashcard := models.NewFlashcard(s.newID(now), card.ID, now)
			if err := repo.CreateFlashcard(ctx, flashcard); err != nil {
				return fmt.Errorf("create flashcard (card_id: %s): %w", card.ID, err)
			}
			flashcards = append(flashcards, flashcard)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.S().Info("generated flashcards", zap.String("topic_id", topicID), zap.Int("count", len(flashcards)))

	return flashcards, nil
}

// TopicState classifies a single topic at the given moment.
func (s *Service) TopicState(ctx context.Context, topicID string, now time.Time) (models.TopicState, error) {
	states, err := s.TopicStates(ctx, []string{topicID}, now)
	if err != nil {
		return "", err
	}
	return states[0], nil
}

// TopicStates classifies every topic id independently; the result order
// matches the input order.
func (s *Service) TopicStates(ctx context.Context, topicIDs []string, now time.Time) ([]models.TopicState, error) {
	explored, err := s.repo.ListExploredTopicIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list explored topics: %w", err)
	}
	classifier := state.NewClassifier(explored)

	progressByTopic := make(map[string]*models.TopicProgress, len(topicIDs))
	cardsByTopic := make(map[string][]models.Flashcard, len(topicIDs))
	for _, topicID := range topicIDs {
		progress, err := s.repo.GetProgress(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("get progress (topic_id: %s): %w", topicID, err)
		}
		progressByTopic[topicID] = progress

		cards, err := s.repo.GetFlashcardsForTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("get flashcards for topic (topic_id: %s): %w", topicID, err)
		}
		cardsByTopic[topicID] = cards
	}

	return classifier.ClassifyAll(topicIDs, progressByTopic, cardsByTopic, now), nil
}

// TopicDetail is a per-topic summary for the review and browsing surfaces.
type TopicDetail struct {
	Topic          models.Topic
	State          models.TopicState
	RetentionScore float64
	FlashcardCount int
	DueCount       int
}

func (s *Service) GetTopicDetail(ctx context.Context, topicID string, now time.Time) (*TopicDetail, error) {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("get topic (topic_id: %s): %w", topicID, err)
	}

	cards, err := s.repo.GetFlashcardsForTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("get flashcards for topic (topic_id: %s): %w", topicID, err)
	}

	topicState, err := s.TopicState(ctx, topicID, now)
	if err != nil {
		return nil, err
	}

	return &TopicDetail{
		Topic:          *topic,
		State:          topicState,
		RetentionScore: state.RetentionScore(cards, now),
		FlashcardCount: len(cards),
		DueCount:       len(srs.DueQueue(cards, now)),
	}, nil
}

// Overview aggregates topic states for the stats surface.
type Overview struct {
	Topics      []models.TopicWithState
	StateCounts map[models.TopicState]int
	DueCount    int
}

func (s *Service) GetOverview(ctx context.Context, now time.Time) (*Overview, error) {
	topics, err := s.repo.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	topicIDs := make([]string, len(topics))
	for i, topic := range topics {
		topicIDs[i] = topic.ID
	}

	states, err := s.TopicStates(ctx, topicIDs, now)
	if err != nil {
		return nil, err
	}

	due, err := s.repo.GetDueFlashcards(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("get due flashcards: %w", err)
	}

	overview := &Overview{
		Topics:      make([]models.TopicWithState, len(topics)),
		StateCounts: make(map[models.TopicState]int),
		DueCount:    len(due),
	}
	for i, topic := range topics {
		overview.Topics[i] = models.TopicWithState{Topic: topic, State: states[i]}
		overview.StateCounts[states[i]]++
	}

	return overview, nil
}

// ImportTopics upserts the static reference dataset. Re-imports are safe.
func (s *Service) ImportTopics(ctx context.Context, topics []models.Topic) (int, error) {
	imported := 0
	err := s.repo.RunInTx(ctx, func(repo models.Repository) error {
		for i := range topics {
			if topics[i].ID == "" {
				return fmt.Errorf("topic without id (index: %d, name: %s)", i, topics[i].Name)
			}
			if err := repo.UpsertTopic(ctx, &topics[i]); err != nil {
				return fmt.Errorf("upsert topic (topic_id: %s): %w", topics[i].ID, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return imported, nil
}
