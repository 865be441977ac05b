// Package resolve turns raw user input into a command invocation: explicit
// /name syntax is parsed against the catalog, anything else runs through the
// natural-language intent classifier. Resolution is a pure function of the
// input text and the static catalog.
package resolve

import (
	"strings"

	"github.com/lightyearai/liya/internal/catalog"
)

// Prefix is the explicit-command prefix character.
const Prefix = "/"

// Origin records how a command was resolved.
type Origin string

const (
	// OriginExplicit means the user typed /name syntax.
	OriginExplicit Origin = "explicit"
	// OriginInferred means a natural-language trigger pattern matched.
	OriginInferred Origin = "inferred"
)

// Invocation is the result of resolving one piece of user input.
// Command is nil when an explicit token had no catalog match; in that case
// Suggestions carries up to three "did you mean" candidates.
type Invocation struct {
	Command     *catalog.Command
	Args        string
	Origin      Origin
	Suggestions []*catalog.Command
}

// IsExplicit reports whether the input would be routed to the explicit
// command parser rather than the intent classifier.
func IsExplicit(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), Prefix)
}

// Parse resolves raw user input. Input starting with the prefix goes to the
// explicit parser and never touches the classifier; anything else is matched
// against the catalog's trigger patterns. A nil return means free text with
// no inferred command — a normal outcome, not an error.
func Parse(text string) *Invocation {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, Prefix) {
		return parseExplicit(trimmed)
	}
	return Infer(trimmed)
}

// parseExplicit interprets a trimmed string starting with the prefix.
// The token is everything up to the first whitespace run, prefix stripped
// and lowercased; the remainder is the argument text.
func parseExplicit(trimmed string) *Invocation {
	body := strings.TrimPrefix(trimmed, Prefix)

	token := body
	args := ""
	if i := strings.IndexFunc(body, isSpace); i >= 0 {
		token = body[:i]
		args = strings.TrimSpace(body[i:])
	}
	token = strings.ToLower(token)

	if cmd := catalog.FindByName(token); cmd != nil {
		return &Invocation{Command: cmd, Args: args, Origin: OriginExplicit}
	}

	// "/" alone: nothing to score against, so no suggestions either.
	if token == "" {
		return &Invocation{Origin: OriginExplicit}
	}

	return &Invocation{
		Origin:      OriginExplicit,
		Suggestions: Suggest(token),
	}
}

// Infer matches free text against the catalog's trigger patterns in fixed
// catalog order, each command's patterns in declaration order; the first
// match wins. The full normalized text is carried through as the arguments —
// triggers are prefix matchers, not token extractors.
func Infer(text string) *Invocation {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil
	}

	for _, cmd := range catalog.All() {
		for _, re := range cmd.Triggers {
			if re.MatchString(normalized) {
				return &Invocation{Command: cmd, Args: normalized, Origin: OriginInferred}
			}
		}
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
