package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionWith(content string) chatCompletionResponse {
	return chatCompletionResponse{
		ID:    "chatcmpl-123",
		Model: "gpt-4o-mini",
		Choices: []choice{
			{
				Index:        0,
				Message:      choiceMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
}

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantCards       []GeneratedCard
		wantError       bool
		wantErrorString string
	}{
		{
			name: "success with plain JSON array",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var reqBody chatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				assert.Len(t, reqBody.Messages, 2)

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(completionWith(`[{"front": "What is SM-2?", "back": "A spaced repetition algorithm."}]`))
			},
			wantCards: []GeneratedCard{
				{Front: "What is SM-2?", Back: "A spaced repetition algorithm."},
			},
		},
		{
			name: "success with fenced JSON",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(completionWith("```json\n[{\"front\": \"Q\", \"back\": \"A\"}]\n```"))
			},
			wantCards: []GeneratedCard{{Front: "Q", Back: "A"}},
		},
		{
			name: "card missing a back fails validation",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(completionWith(`[{"front": "Q", "back": ""}]`))
			},
			wantError:       true,
			wantErrorString: "validate card",
		},
		{
			name: "client error is not retried",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			wantError:       true,
			wantErrorString: "response error 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "gpt-4o-mini", 0)
			defer client.Close()

			cards, err := client.Generate(context.Background(), GenerateRequest{
				TopicName: "Spaced repetition",
				Content:   "SM-2 schedules reviews at growing intervals.",
				Count:     1,
			})

			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCards, cards)
		})
	}
}

func TestClient_GenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionWith(`[{"front": "Q", "back": "A"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-4o-mini", 2)
	defer client.Close()

	cards, err := client.Generate(context.Background(), GenerateRequest{TopicName: "t", Content: "c", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []GeneratedCard{{Front: "Q", Back: "A"}}, cards)
	assert.Equal(t, int32(2), calls.Load())
}
