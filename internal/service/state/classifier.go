// Package state derives a topic's discrete knowledge state from its
// flashcards and progress record. Classification is a pure projection: it
// can be recomputed at any time from stored data and the injected clock.
package state

import (
	"time"

	"github.com/nebulalearn/nebula/internal/models"
)

const (
	masteryRetentionThreshold = 0.8
	masteryCapturedFragments  = 4
)

// Classifier classifies topics against an explored-topic index. The index
// is injected at construction so isolated instances can coexist in tests.
type Classifier struct {
	explored map[string]struct{}
}

func NewClassifier(exploredTopicIDs []string) *Classifier {
	explored := make(map[string]struct{}, len(exploredTopicIDs))
	for _, id := range exploredTopicIDs {
		explored[id] = struct{}{}
	}
	return &Classifier{explored: explored}
}

// Classify derives the topic's knowledge state. The cascade is evaluated
// top-down and the first match wins:
//
//  1. fading: any SRS-aggregate card critically overdue. Decay always
//     overrides mastery.
//  2. mastered: all core fragments captured and retention at threshold.
//  3. studied: any SRS-aggregate card at all, however poor the retention.
//  4. learning: fragments captured but nothing in spaced repetition yet.
//  5. discovered: explored or visited, the weakest positive signal.
//  6. undiscovered: everything else.
//
// A nil progress record means zero captured fragments and no visit, so
// missing data falls through the cascade conservatively.
func (c *Classifier) Classify(topicID string, progress *models.TopicProgress, cards []models.Flashcard, now time.Time) models.TopicState {
	aggregate := countSRSAggregate(cards)

	captured := 0
	visited := false
	if progress != nil {
		captured = len(progress.CapturedCards)
		visited = progress.FirstVisited != nil
	}

	switch {
	case aggregate > 0 && HasCriticallyOverdue(cards, now):
		return models.StateFading
	case aggregate > 0 && captured >= masteryCapturedFragments && RetentionScore(cards, now) >= masteryRetentionThreshold:
		return models.StateMastered
	case aggregate > 0:
		return models.StateStudied
	case captured > 0:
		return models.StateLearning
	case c.isExplored(topicID) || visited:
		return models.StateDiscovered
	default:
		return models.StateUndiscovered
	}
}

// ClassifyAll classifies every topic id independently. Output order matches
// input order and no state is shared between classifications.
func (c *Classifier) ClassifyAll(topicIDs []string, progress map[string]*models.TopicProgress, cards map[string][]models.Flashcard, now time.Time) []models.TopicState {
	states := make([]models.TopicState, len(topicIDs))
	for i, id := range topicIDs {
		states[i] = c.Classify(id, progress[id], cards[id], now)
	}
	return states
}

func (c *Classifier) isExplored(topicID string) bool {
	_, ok := c.explored[topicID]
	return ok
}
