// Package dispatch sends resolved turns to the feature backend. Each module
// maps to its own endpoint and payload shape; the engine only sees rendered
// assistant text or one of two error kinds (timeout vs everything else).
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/lightyearai/liya/internal/session"
)

// ErrTimeout marks a dispatch that exceeded the configured bound. Callers
// surface it with retry-oriented messaging, distinct from a generic failure.
var ErrTimeout = errors.New("dispatch timed out")

// Dispatcher is the boundary the engine dispatches through.
type Dispatcher interface {
	Dispatch(ctx context.Context, module, text string, sess *session.Session) (string, error)
}

// endpoints maps a module name to its backend path. The empty module name
// is default chat. This table is the only place transport routing lives;
// resolution logic never sees it.
var endpoints = map[string]string{
	"":              "/api/chat",
	"study":         "/study/chat",
	"proofread":     "/proofread/text",
	"entertainment": "/entertainment/chat",
	"excel":         "/generate_excel_crew",
	"presentation":  "/api/create-presentation",
	"translate":     "/api/translate",
	"summarize":     "/api/summarize",
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Dispatch sends one turn to the module's handler and returns the rendered
// assistant content. A module with no endpoint entry falls back to default
// chat.
func (c *Client) Dispatch(ctx context.Context, module, text string, sess *session.Session) (string, error) {
	path, ok := endpoints[module]
	if !ok {
		path = endpoints[""]
	}
	url := c.baseURL + path

	start := time.Now()

	var resp *http.Response
	var err error
	if module == "presentation" {
		// The presentation builder accepts multipart form data, not JSON.
		resp, err = c.postForm(ctx, url, text)
	} else {
		resp, err = c.postJSON(ctx, url, payloadFor(module, text, sess))
	}
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("dispatch timed out", "module", module, "elapsed", time.Since(start))
			return "", fmt.Errorf("%s handler: %w", moduleLabel(module), ErrTimeout)
		}
		return "", fmt.Errorf("%s handler: %w", moduleLabel(module), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", moduleLabel(module), err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("%s handler returned %d: %s", moduleLabel(module), resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("%s handler returned %d", moduleLabel(module), resp.StatusCode)
	}

	c.logger.Info("dispatch complete", "module", moduleLabel(module), "elapsed", time.Since(start))

	return renderResponse(module, body)
}

// payloadFor builds the module-specific request body. Shapes mirror what
// each backend handler expects; they differ per module and that difference
// is contained here.
func payloadFor(module, text string, sess *session.Session) any {
	switch module {
	case "study":
		fileID := sess.Context[session.CtxAttachedFile]
		return map[string]any{
			"message":    text,
			"session_id": sess.ID,
			"file_id":    orNil(fileID),
			"has_file":   fileID != "",
		}
	case "proofread":
		return map[string]any{"text": text}
	case "entertainment":
		category := sess.Context[session.CtxCategory]
		if category == "" {
			category = "all"
		}
		return map[string]any{"message": text, "category": category}
	case "excel":
		return map[string]any{"prompt": text, "use_crew": true}
	case "translate":
		source := sess.Context[session.CtxSourceLanguage]
		if source == "" {
			source = "auto"
		}
		target := sess.Context[session.CtxTargetLanguage]
		if target == "" {
			target = "english"
		}
		return map[string]any{
			"text":            text,
			"source_language": source,
			"target_language": target,
			"session_id":      sess.ID,
		}
	case "summarize":
		return map[string]any{"text": text, "session_id": sess.ID}
	default:
		return map[string]any{"message": text, "session_id": sess.ID}
	}
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func (c *Client) postForm(ctx context.Context, url, text string) (*http.Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("text", text)
	_ = w.WriteField("title", "Presentation")
	_ = w.WriteField("tone", "professional")
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.client.Do(req)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func moduleLabel(module string) string {
	if module == "" {
		return "chat"
	}
	return module
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
