package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lightyearai/liya/internal/catalog"
	"github.com/lightyearai/liya/internal/session"
	"github.com/lightyearai/liya/internal/store"
)

// Engine is the conversation state machine the API fronts.
type Engine interface {
	NewChat(ctx context.Context) (*session.Session, error)
	HandleTurn(ctx context.Context, sess *session.Session, text string) ([]session.Message, error)
}

// SessionStore is the read/delete side of session persistence. Writes go
// through the engine.
type SessionStore interface {
	Load(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context) ([]store.SessionSummary, error)
	Delete(ctx context.Context, id string) error
}

type Server struct {
	router   *chi.Mux
	port     int
	engine   Engine
	sessions SessionStore
}

func NewServer(port int, apiToken string, engine Engine, sessions SessionStore) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		engine:   engine,
		sessions: sessions,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Get("/commands", s.listCommands)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Get("/", s.listSessions)
			r.Get("/{id}", s.getSession)
			r.Delete("/{id}", s.deleteSession)
			r.Post("/{id}/turns", s.postTurn)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listCommands exposes the catalog so clients can render menus and
// autocomplete without hardcoding command metadata.
func (s *Server) listCommands(w http.ResponseWriter, r *http.Request) {
	type commandView struct {
		Name        string `json:"name"`
		Label       string `json:"label"`
		Emoji       string `json:"emoji"`
		Description string `json:"description"`
		Tooltip     string `json:"tooltip"`
	}

	all := catalog.All()
	out := make([]commandView, len(all))
	for i, c := range all {
		out[i] = commandView{
			Name:        c.Name,
			Label:       c.Label,
			Emoji:       c.Emoji,
			Description: c.Description,
			Tooltip:     c.Tooltip,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": out})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
