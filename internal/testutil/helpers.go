package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/yamdb/yamdb/internal/models"
)

// PerformRequest sends a JSON request through handler. An empty token means
// an anonymous request.
func PerformRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeJSON decodes the recorded response body into a generic map.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", w.Body.String(), err)
	}
	return out
}

// RecordingNotifier captures confirmation codes instead of mailing them.
type RecordingNotifier struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
	Err   error
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{codes: make(map[string]string)}
}

func (n *RecordingNotifier) SendConfirmationCode(_ context.Context, user *models.User, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.codes[user.Email] = code
	n.sent++
	return nil
}

// CodeFor returns the last code sent to email.
func (n *RecordingNotifier) CodeFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

func (n *RecordingNotifier) Sent() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}
