package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lightyearai/liya/internal/engine"
	"github.com/lightyearai/liya/internal/session"
	"github.com/lightyearai/liya/internal/store"
)

// TurnRequest is the payload for POST /api/v1/sessions/{id}/turns.
type TurnRequest struct {
	Text string `json:"text"`
}

// TurnResponse carries the messages this turn appended plus the session
// state the client needs to update its UI.
type TurnResponse struct {
	Messages     []session.Message `json:"messages"`
	ActiveModule string            `json:"active_module"`
	Title        string            `json:"title"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.NewChat(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("create session: %v", err))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
		return
	}
	if list == nil {
		list = []store.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load session: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("delete session: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load session: %v", err))
		return
	}

	msgs, err := s.engine.HandleTurn(r.Context(), sess, req.Text)
	if errors.Is(err, engine.ErrBusy) {
		writeError(w, http.StatusConflict, "a turn is already in progress for this session")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("handle turn: %v", err))
		return
	}
	if msgs == nil {
		msgs = []session.Message{}
	}

	writeJSON(w, http.StatusOK, TurnResponse{
		Messages:     msgs,
		ActiveModule: sess.ActiveModule,
		Title:        sess.Title,
	})
}
