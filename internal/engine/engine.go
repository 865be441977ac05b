// Package engine drives the conversation state machine: it resolves raw
// input, applies module transitions to the session, dispatches feature
// turns, and turns every outcome — including failures — into transcript
// messages. No error from a feature handler ever escapes past the engine;
// the transcript stays a complete audit trail of the conversation.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lightyearai/liya/internal/dispatch"
	"github.com/lightyearai/liya/internal/resolve"
	"github.com/lightyearai/liya/internal/session"
)

// ErrBusy is returned when a submission arrives while the session already
// has a dispatch outstanding. Concurrent turns are rejected, never queued.
var ErrBusy = errors.New("session has a turn in flight")

// NATS subjects published on session lifecycle and turn completion.
const (
	SubjectSessionCreated = "liya.session.created"
	SubjectSessionCleared = "liya.session.cleared"
	SubjectModuleActive   = "liya.module.activated"
	SubjectTurnCompleted  = "liya.session.turn.completed"
)

// SubjectFileUploaded is consumed rather than published: the upload
// service announces stored files and the engine records them in session
// context.
const SubjectFileUploaded = "liya.file.uploaded"

// Store persists session state after every turn (last-write-wins) and
// loads it back for event-driven updates.
type Store interface {
	Save(ctx context.Context, sess *session.Session) error
	Load(ctx context.Context, id string) (*session.Session, error)
}

// Publisher emits fire-and-forget lifecycle events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Language-change patterns recognized as a local transition while the
// translate module is active. Anchored at both ends: the whole input must
// be the language directive, otherwise it is text to translate.
var (
	localFromRe = regexp.MustCompile(`(?i)^(?:from|translate from)\s+([a-zA-Z]+)(?:\s+to\s+([a-zA-Z]+))?$`)
	localToRe   = regexp.MustCompile(`(?i)^(?:to|into|translate to|translate into)\s+([a-zA-Z]+)$`)

	// Full-directive forms used when /translate is invoked with language
	// config as its entire argument string. Anchored at both ends like the
	// local variants: args containing a directive mid-sentence are text to
	// translate, not configuration.
	argsFromRe = regexp.MustCompile(`(?i)^from\s+([a-zA-Z]+)(?:\s+(?:to|into)\s+([a-zA-Z]+))?$`)
	argsToRe   = regexp.MustCompile(`(?i)^(?:to|into)\s+([a-zA-Z]+)$`)
)

type Engine struct {
	dispatcher dispatch.Dispatcher
	store      Store
	events     Publisher // optional — engine works without an event bus
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

func New(d dispatch.Dispatcher, store Store, events Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		dispatcher: d,
		store:      store,
		events:     events,
		logger:     logger,
		now:        time.Now,
		inflight:   make(map[string]bool),
	}
}

// NewChat creates a fresh session in the initial state: no active module,
// empty context, welcome message shown.
func (e *Engine) NewChat(ctx context.Context) (*session.Session, error) {
	sess := session.New()
	sess.Append(session.Message{
		Role:      session.RoleSystem,
		Content:   session.Welcome(e.now()),
		Timestamp: e.now(),
	})

	if err := e.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	e.publish(SubjectSessionCreated, map[string]any{
		"session_id": sess.ID,
		"timestamp":  e.now().UTC().Format(time.RFC3339),
	})

	e.logger.Info("session created", "session_id", sess.ID)
	return sess, nil
}

// HandleTurn processes one user submission against the session. It mutates
// the session, persists it, and returns the messages appended by this turn.
// The only error callers see is ErrBusy; everything else becomes a
// transcript message.
func (e *Engine) HandleTurn(ctx context.Context, sess *session.Session, text string) ([]session.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	if !e.acquire(sess.ID) {
		return nil, ErrBusy
	}
	defer e.release(sess.ID)

	before := len(sess.Transcript)

	// The file-listing shortcut bypasses both the parser and the active
	// module, in any state.
	if lower := strings.ToLower(text); lower == "list files" || lower == "show files" {
		e.listFiles(sess, text)
	} else if resolve.IsExplicit(text) {
		e.handleExplicit(ctx, sess, text)
	} else {
		e.handleFreeText(ctx, sess, text)
	}

	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Error("failed to save session", "session_id", sess.ID, "error", err)
	}
	e.publish(SubjectTurnCompleted, map[string]any{
		"session_id": sess.ID,
		"module":     sess.ActiveModule,
		"timestamp":  e.now().UTC().Format(time.RFC3339),
	})

	// A clear shrinks the transcript below its pre-turn length; the whole
	// reset transcript is what this turn produced.
	if before > len(sess.Transcript) {
		before = 0
	}
	return sess.Transcript[before:], nil
}

func (e *Engine) handleExplicit(ctx context.Context, sess *session.Session, text string) {
	inv := resolve.Parse(text)

	if inv.Command == nil {
		ts := e.now()
		e.append(sess, session.Message{Role: session.RoleUser, Content: text, Timestamp: ts})
		e.append(sess, session.Message{
			Role:      session.RoleAssistant,
			Content:   unrecognizedMessage(text, inv.Suggestions),
			Timestamp: e.after(ts),
		})
		return
	}

	e.applyCommand(ctx, sess, inv, text)
}

func (e *Engine) handleFreeText(ctx context.Context, sess *session.Session, text string) {
	// The translate language-change directive is handled locally and takes
	// precedence over everything else while translating.
	if sess.ActiveModule == "translate" && e.applyLanguageChange(sess, text) {
		return
	}

	// Intent detection runs on every free-text submission, active module
	// or not: "start a new chat" mid-module still clears, and a matched
	// intent for another module switches to it.
	if inv := resolve.Infer(text); inv != nil {
		e.applyCommand(ctx, sess, inv, text)
		return
	}

	// Module active: the turn belongs to that module.
	if sess.ActiveModule != "" {
		e.dispatchTurn(ctx, sess, sess.ActiveModule, text, e.now())
		return
	}

	// No intent matched and no module active: default chat. A normal
	// outcome, not an error.
	e.dispatchTurn(ctx, sess, "", text, e.now())
}

// applyCommand performs a module transition for a resolved command.
// Explicit and inferred invocations are treated identically from here on.
func (e *Engine) applyCommand(ctx context.Context, sess *session.Session, inv *resolve.Invocation, raw string) {
	ts := e.now()

	switch inv.Command.Name {
	case "clear":
		e.clear(sess)
		return

	case "help":
		e.append(sess, session.Message{Role: session.RoleUser, Content: raw, Timestamp: ts})
		e.append(sess, session.Message{
			Role:      session.RoleAssistant,
			Content:   helpMessage(),
			Timestamp: e.after(ts),
		})
		return
	}

	args := inv.Args
	if inv.Command.Name == "translate" {
		// Language config in the arguments is consumed as configuration,
		// not dispatched as text to translate.
		if consumed := e.applyTranslateConfig(sess, args); consumed {
			args = ""
		}
	}

	sess.ActiveModule = inv.Command.Name
	e.append(sess, session.Message{Role: session.RoleUser, Content: raw, Timestamp: ts})
	e.append(sess, session.Message{
		Role:      session.RoleSystem,
		Content:   activationMessage(inv.Command, sess),
		Timestamp: ts.Add(time.Millisecond),
		Module:    inv.Command.Name,
	})
	e.publish(SubjectModuleActive, map[string]any{
		"session_id": sess.ID,
		"module":     inv.Command.Name,
		"origin":     string(inv.Origin),
		"timestamp":  e.now().UTC().Format(time.RFC3339),
	})

	e.logger.Info("module activated",
		"session_id", sess.ID,
		"module", inv.Command.Name,
		"origin", string(inv.Origin),
	)

	// Non-empty args become the module's first turn, stamped after the
	// activation notice so replay sorting keeps the order.
	if args != "" {
		e.dispatchTurn(ctx, sess, inv.Command.Name, args, ts.Add(2*time.Millisecond))
	}
}

// dispatchTurn sends one turn to the module's handler and appends both
// sides to the transcript. Dispatch failure leaves the active module
// unchanged so the user can retry.
func (e *Engine) dispatchTurn(ctx context.Context, sess *session.Session, module, text string, ts time.Time) {
	e.append(sess, session.Message{Role: session.RoleUser, Content: text, Timestamp: ts, Module: module})

	reply, err := e.dispatcher.Dispatch(ctx, module, text, sess)
	respTS := e.after(ts)
	if err != nil {
		e.logger.Error("dispatch failed", "session_id", sess.ID, "module", module, "error", err)
		content := failureMessage()
		if errors.Is(err, dispatch.ErrTimeout) {
			content = timeoutMessage()
		}
		e.append(sess, session.Message{Role: session.RoleAssistant, Content: content, Timestamp: respTS, Module: module})
		return
	}

	e.append(sess, session.Message{Role: session.RoleAssistant, Content: reply, Timestamp: respTS, Module: module})
}

// clear resets the conversation but keeps the session id.
func (e *Engine) clear(sess *session.Session) {
	sess.Clear()
	sess.Append(session.Message{
		Role:      session.RoleSystem,
		Content:   session.Welcome(e.now()),
		Timestamp: e.now(),
	})
	e.publish(SubjectSessionCleared, map[string]any{
		"session_id": sess.ID,
		"timestamp":  e.now().UTC().Format(time.RFC3339),
	})
	e.logger.Info("session cleared", "session_id", sess.ID)
}

// applyLanguageChange handles the one case where module-active text does
// not produce a dispatch: a language directive while translating. Returns
// true when the text was consumed locally.
func (e *Engine) applyLanguageChange(sess *session.Session, text string) bool {
	from := localFromRe.FindStringSubmatch(text)
	to := localToRe.FindStringSubmatch(text)
	if from == nil && to == nil {
		return false
	}

	if from != nil {
		sess.Context[session.CtxSourceLanguage] = from[1]
		if from[2] != "" {
			sess.Context[session.CtxTargetLanguage] = from[2]
		}
	} else {
		sess.Context[session.CtxTargetLanguage] = to[1]
	}

	// Only the confirmation goes into the transcript; the directive itself
	// is configuration, not conversation.
	e.append(sess, session.Message{
		Role:      session.RoleAssistant,
		Content:   languageConfirmation(sess),
		Timestamp: e.now(),
		Module:    "translate",
	})
	return true
}

// applyTranslateConfig extracts language settings when the /translate
// arguments are nothing but a language directive. Returns true when the
// arguments were consumed as configuration; any other text is left for
// dispatch as the first turn.
func (e *Engine) applyTranslateConfig(sess *session.Session, args string) bool {
	from := argsFromRe.FindStringSubmatch(args)
	to := argsToRe.FindStringSubmatch(args)
	if from == nil && to == nil {
		return false
	}

	source := "auto"
	target := "english"
	if from != nil {
		source = from[1]
		if from[2] != "" {
			target = from[2]
		}
	} else {
		target = to[1]
	}
	sess.Context[session.CtxSourceLanguage] = source
	sess.Context[session.CtxTargetLanguage] = target
	return true
}

// HandleFileUploaded records an uploaded file against its session so
// study dispatches and the file listing can see it. Wired as a NATS
// subscription handler; malformed or unmatched events are dropped.
func (e *Engine) HandleFileUploaded(subject string, data []byte) {
	var evt struct {
		SessionID string `json:"session_id"`
		FileName  string `json:"file_name"`
	}
	if err := json.Unmarshal(data, &evt); err != nil || evt.SessionID == "" || evt.FileName == "" {
		e.logger.Warn("malformed file upload event", "subject", subject, "error", err)
		return
	}

	ctx := context.Background()
	sess, err := e.store.Load(ctx, evt.SessionID)
	if err != nil {
		e.logger.Warn("file upload event for unknown session", "session_id", evt.SessionID, "error", err)
		return
	}
	sess.Context[session.CtxAttachedFile] = evt.FileName
	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Error("failed to save file attachment", "session_id", evt.SessionID, "error", err)
		return
	}
	e.logger.Info("file attached", "session_id", evt.SessionID, "file", evt.FileName)
}

func (e *Engine) listFiles(sess *session.Session, text string) {
	ts := e.now()
	e.append(sess, session.Message{Role: session.RoleUser, Content: text, Timestamp: ts})
	e.append(sess, session.Message{
		Role:      session.RoleAssistant,
		Content:   fileListing(sess),
		Timestamp: e.after(ts),
	})
}

func (e *Engine) append(sess *session.Session, msg session.Message) {
	sess.Append(msg)
}

// after returns a timestamp strictly greater than ts, so a response always
// sorts after its request even when the clock has not advanced.
func (e *Engine) after(ts time.Time) time.Time {
	now := e.now()
	if now.After(ts) {
		return now
	}
	return ts.Add(time.Millisecond)
}

func (e *Engine) acquire(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[sessionID] {
		return false
	}
	e.inflight[sessionID] = true
	return true
}

func (e *Engine) release(sessionID string) {
	e.mu.Lock()
	delete(e.inflight, sessionID)
	e.mu.Unlock()
}

func (e *Engine) publish(subject string, data any) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(subject, data); err != nil {
		e.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
