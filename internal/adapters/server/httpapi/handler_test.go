package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evanschultz/koni/internal/domain"
)

// stubNotes returns fixture notes and counts calls.
type stubNotes struct {
	notes []domain.Note
	err   error
	calls int
}

// ListNotes returns the configured fixture.
func (s *stubNotes) ListNotes(context.Context) ([]domain.Note, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Note(nil), s.notes...), nil
}

// decodeBody decodes one JSON response body into the requested type.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out
}

// TestHandlerListNotes verifies GET /notes returns every stored note.
func TestHandlerListNotes(t *testing.T) {
	notes := &stubNotes{notes: []domain.Note{{ID: 1, Title: "A", Body: "one"}, {ID: 2, Title: "B"}}}
	handler := NewHandler(notes, nil)

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeBody[NotesResponse](t, rec)
	if len(got.Notes) != 2 || got.Notes[0].Title != "A" || got.Notes[1].ID != 2 {
		t.Fatalf("notes = %#v", got.Notes)
	}
}

// TestHandlerListNotesEmpty verifies an empty store encodes as an empty array.
func TestHandlerListNotesEmpty(t *testing.T) {
	handler := NewHandler(&stubNotes{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"notes":[]}` {
		t.Fatalf("body = %q, want empty notes array", body)
	}
}

// TestHandlerMessage verifies bot commands produce replies.
func TestHandlerMessage(t *testing.T) {
	notes := &stubNotes{notes: []domain.Note{{ID: 1, Title: "A", Body: "one"}}}
	handler := NewHandler(notes, nil)

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "ping", content: "!ping", want: []string{"Pong!"}},
		{name: "notes", content: "!notes", want: []string{"----------------- note 0 ------------------\ntitle: A\none\n"}},
		{name: "chatter", content: "hello there", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(MessageRequest{Content: tc.content})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(string(body))))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
			}
			got := decodeBody[MessageResponse](t, rec)
			if len(got.Replies) != len(tc.want) {
				t.Fatalf("replies = %#v, want %#v", got.Replies, tc.want)
			}
			for i := range tc.want {
				if got.Replies[i] != tc.want[i] {
					t.Fatalf("reply[%d] = %q, want %q", i, got.Replies[i], tc.want[i])
				}
			}
		})
	}
}

// TestHandlerMessageRejectsBadBodies verifies malformed payloads map to invalid_request.
func TestHandlerMessageRejectsBadBodies(t *testing.T) {
	handler := NewHandler(&stubNotes{}, nil)

	for name, body := range map[string]string{
		"malformed":     `{"content":`,
		"unknown field": `{"content":"!ping","extra":1}`,
		"trailing":      `{"content":"!ping"}{}`,
		"blank content": `{"content":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			got := decodeBody[ErrorEnvelope](t, rec)
			if got.Error.Code != "invalid_request" {
				t.Fatalf("code = %q, want invalid_request", got.Error.Code)
			}
		})
	}
}

// TestHandlerStoreFailure verifies store errors surface as internal_error.
func TestHandlerStoreFailure(t *testing.T) {
	handler := NewHandler(&stubNotes{err: errors.New("disk gone")}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	got := decodeBody[ErrorEnvelope](t, rec)
	if got.Error.Code != "internal_error" || !strings.Contains(got.Error.Message, "disk gone") {
		t.Fatalf("error = %#v", got.Error)
	}
}

// TestHandlerRouting verifies unknown paths and wrong methods.
func TestHandlerRouting(t *testing.T) {
	handler := NewHandler(&stubNotes{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notes", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
		t.Fatalf("Allow = %q, want GET", allow)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
