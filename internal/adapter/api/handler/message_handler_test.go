package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain/mocks"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"
)

func TestMessageHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		maxSize        int64
		queueErr       error
		expectedStatus int
	}{
		{
			name:           "Valid Message",
			body:           `{"guild_id": "g1", "channel_id": "c1", "author_id": "u1", "content": "hello"}`,
			maxSize:        1024,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "Missing Guild",
			body:           `{"author_id": "u1", "content": "hello"}`,
			maxSize:        1024,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Author",
			body:           `{"guild_id": "g1", "content": "hello"}`,
			maxSize:        1024,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Bad JSON",
			body:           `{"guild_id": "g1"`,
			maxSize:        1024,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Payload Too Large",
			body:           `{"guild_id": "g1", "author_id": "u1", "content": "` + strings.Repeat("a", 200) + `"}`,
			maxSize:        50,
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "Queue Unavailable",
			body:           `{"guild_id": "g1", "author_id": "u1", "content": "hello"}`,
			maxSize:        1024,
			queueErr:       errors.New("stream down"),
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &mocks.MockMessageQueue{EnqueueErr: tt.queueErr}
			handler := NewMessageHandler(usecase.NewIngestMessage(queue, logger), logger, tt.maxSize, nil)

			req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", status, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusAccepted {
				if len(queue.Enqueued) != 1 {
					t.Fatalf("expected one enqueued message, got %d", len(queue.Enqueued))
				}
				if queue.Enqueued[0].ID == "" {
					t.Error("expected a generated message id")
				}
			}
		})
	}
}
