package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lightyearai/liya/internal/engine"
	"github.com/lightyearai/liya/internal/session"
	"github.com/lightyearai/liya/internal/store"
)

type fakeEngine struct {
	turnErr  error
	lastText string
}

func (f *fakeEngine) NewChat(ctx context.Context) (*session.Session, error) {
	sess := session.New()
	sess.Append(session.Message{Role: session.RoleSystem, Content: "Good morning! I'm Liya.", Timestamp: time.Now()})
	return sess, nil
}

func (f *fakeEngine) HandleTurn(ctx context.Context, sess *session.Session, text string) ([]session.Message, error) {
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	f.lastText = text
	msgs := []session.Message{
		{Role: session.RoleUser, Content: text, Timestamp: time.Now()},
		{Role: session.RoleAssistant, Content: "reply", Timestamp: time.Now()},
	}
	for _, m := range msgs {
		sess.Append(m)
	}
	return msgs, nil
}

type fakeSessions struct {
	byID map[string]*session.Session
}

func newFakeSessions(sessions ...*session.Session) *fakeSessions {
	f := &fakeSessions{byID: make(map[string]*session.Session)}
	for _, s := range sessions {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSessions) Load(ctx context.Context, id string) (*session.Session, error) {
	sess, ok := f.byID[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return sess, nil
}

func (f *fakeSessions) List(ctx context.Context) ([]store.SessionSummary, error) {
	var out []store.SessionSummary
	for _, s := range f.byID {
		out = append(out, store.SessionSummary{ID: s.ID, Title: s.Title, ActiveModule: s.ActiveModule})
	}
	return out, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrSessionNotFound
	}
	delete(f.byID, id)
	return nil
}

func newTestServer(sessions *fakeSessions) (*Server, *fakeEngine) {
	eng := &fakeEngine{}
	return NewServer(8760, "", eng, sessions), eng
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(newFakeSessions())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestCommandsEndpoint(t *testing.T) {
	srv, _ := newTestServer(newFakeSessions())

	req := httptest.NewRequest("GET", "/api/v1/commands", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Commands []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"commands"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Commands) != 9 {
		t.Fatalf("expected 9 commands, got %d", len(body.Commands))
	}
	if body.Commands[0].Name != "study" {
		t.Errorf("expected study first, got %q", body.Commands[0].Name)
	}
	for _, c := range body.Commands {
		if c.Description == "" {
			t.Errorf("command %q has no description", c.Name)
		}
	}
}

func TestCreateSession(t *testing.T) {
	srv, _ := newTestServer(newFakeSessions())

	req := httptest.NewRequest("POST", "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var sess session.Session
	if err := json.NewDecoder(w.Body).Decode(&sess); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if sess.ID == "" {
		t.Error("expected non-empty session id")
	}
	if len(sess.Transcript) != 1 || sess.Transcript[0].Role != session.RoleSystem {
		t.Errorf("expected a single welcome message, got %+v", sess.Transcript)
	}
}

func TestPostTurn(t *testing.T) {
	sess := session.New()
	sessions := newFakeSessions(sess)
	srv, eng := newTestServer(sessions)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+sess.ID+"/turns",
		strings.NewReader(`{"text": "/study explain gravity"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if eng.lastText != "/study explain gravity" {
		t.Errorf("engine received %q", eng.lastText)
	}

	var body TurnResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(body.Messages))
	}
}

func TestPostTurnUnknownSession(t *testing.T) {
	srv, _ := newTestServer(newFakeSessions())

	req := httptest.NewRequest("POST", "/api/v1/sessions/nope/turns", strings.NewReader(`{"text": "hi"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPostTurnBusy(t *testing.T) {
	sess := session.New()
	srv, eng := newTestServer(newFakeSessions(sess))
	eng.turnErr = engine.ErrBusy

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+sess.ID+"/turns", strings.NewReader(`{"text": "hi"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 while a turn is in flight, got %d", w.Code)
	}
}

func TestPostTurnInvalidJSON(t *testing.T) {
	sess := session.New()
	srv, _ := newTestServer(newFakeSessions(sess))

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+sess.ID+"/turns", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	sess := session.New()
	sess.Title = "homework help"
	srv, _ := newTestServer(newFakeSessions(sess))

	req := httptest.NewRequest("GET", "/api/v1/sessions/"+sess.ID, nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/sessions/"+sess.ID, nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/sessions/"+sess.ID, nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	srv, _ := newTestServer(newFakeSessions(session.New(), session.New()))

	req := httptest.NewRequest("GET", "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Sessions []store.SessionSummary `json:"sessions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(body.Sessions))
	}
}

func TestBearerAuth(t *testing.T) {
	eng := &fakeEngine{}
	srv := NewServer(8760, "secret-token", eng, newFakeSessions())

	// Health stays open.
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected health to bypass auth, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/commands", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/commands", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/commands", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with correct token, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _ := newTestServer(newFakeSessions())

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
