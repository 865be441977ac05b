package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lightyearai/liya/internal/session"
)

// ErrSessionNotFound is returned when a session id has no stored row.
var ErrSessionNotFound = errors.New("session not found")

// listLimit caps the session listing to the most recently active chats.
const listLimit = 20

// Save persists the full session state. The transcript is replaced
// wholesale inside one transaction; the session row is upserted
// last-write-wins. Tables: sessions, messages.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	contextJSON, err := json.Marshal(sess.Context)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, title, active_module, context, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			active_module = EXCLUDED.active_module,
			context = EXCLUDED.context,
			last_message_at = EXCLUDED.last_message_at`,
		sess.ID, sess.Title, sess.ActiveModule, contextJSON, sess.CreatedAt, sess.LastMessageAt,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, sess.ID)
	if err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	for i, msg := range sess.Transcript {
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (session_id, ord, role, content, module, sent_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sess.ID, i, msg.Role, msg.Content, msg.Module, msg.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads a session and its transcript. The transcript comes back in
// replay order.
func (s *Store) Load(ctx context.Context, id string) (*session.Session, error) {
	sess := &session.Session{ID: id}
	var contextJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT title, active_module, context, created_at, last_message_at
		FROM sessions WHERE id = $1`, id,
	).Scan(&sess.Title, &sess.ActiveModule, &contextJSON, &sess.CreatedAt, &sess.LastMessageAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	if err := json.Unmarshal(contextJSON, &sess.Context); err != nil {
		return nil, fmt.Errorf("unmarshal session context: %w", err)
	}
	if sess.Context == nil {
		sess.Context = make(map[string]string)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT role, content, module, sent_at
		FROM messages WHERE session_id = $1
		ORDER BY sent_at, ord`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg session.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Module, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		sess.Transcript = append(sess.Transcript, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	sess.SortTranscript()
	return sess, nil
}

// SessionSummary is the listing row for the chat sidebar.
type SessionSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ActiveModule  string `json:"active_module,omitempty"`
	LastMessageAt string `json:"last_message_at"`
}

// List returns the most recently active sessions, newest first.
func (s *Store) List(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, active_module, to_char(last_message_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM sessions
		ORDER BY last_message_at DESC
		LIMIT $1`, listLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.ActiveModule, &sum.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Delete removes a session and its transcript entirely.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return tx.Commit(ctx)
}
