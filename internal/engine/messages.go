package engine

import (
	"fmt"
	"strings"

	"github.com/lightyearai/liya/internal/catalog"
	"github.com/lightyearai/liya/internal/resolve"
	"github.com/lightyearai/liya/internal/session"
)

// activationMessage renders the system notice emitted when a module becomes
// active. Translate includes the current language settings and the
// in-module directive for changing them.
func activationMessage(cmd *catalog.Command, sess *session.Session) string {
	switch cmd.Name {
	case "study":
		return "Switching to Study Mode. You can ask homework questions or get help understanding concepts."
	case "proofread":
		return "Switching to Proofreading Mode. Paste text to check grammar and improve writing."
	case "entertainment":
		return "Switching to Entertainment Mode. Let's chat about movies, music, books, or other entertainment topics!"
	case "excel":
		return "Switching to Excel Generator. Describe the spreadsheet you want to create."
	case "presentation":
		return "Switching to Presentation Builder. Describe the presentation you want to create."
	case "summarize":
		return "Switching to Summarize Mode. Paste the text you want to summarize."
	case "translate":
		source := sess.Context[session.CtxSourceLanguage]
		target := sess.Context[session.CtxTargetLanguage]
		if target == "" {
			target = "English"
		}
		sourceText := fmt.Sprintf("translate from %s", source)
		if source == "" || source == "auto" {
			sourceText = "auto-detect the source language"
		}
		return fmt.Sprintf("Switching to Translation Mode. I'll %s to %s. "+
			"Simply enter the text you want to translate. "+
			"You can change languages anytime by typing: to [language] or from [language] to [language]",
			sourceText, target)
	default:
		return fmt.Sprintf("Switching to %s.", cmd.Label)
	}
}

// unrecognizedMessage renders the "did you mean" feedback for an explicit
// token with no catalog match.
func unrecognizedMessage(raw string, suggestions []*catalog.Command) string {
	token := strings.TrimPrefix(strings.Fields(raw)[0], resolve.Prefix)

	var b strings.Builder
	fmt.Fprintf(&b, "Command '/%s' not recognized.", strings.ToLower(token))
	if len(suggestions) > 0 {
		b.WriteString(" Did you mean: ")
		names := make([]string, len(suggestions))
		for i, c := range suggestions {
			names[i] = resolve.Prefix + c.Name
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("?")
	}
	b.WriteString(" Type /help to see all available commands.")
	return b.String()
}

// helpMessage renders the catalog listing. The command names and
// descriptions here are discoverable product surface; they come straight
// from the catalog rather than a hand-maintained copy.
func helpMessage() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range catalog.All() {
		usage := "/" + c.Name
		switch c.Name {
		case "clear", "help":
			// no argument hint
		default:
			usage += " [text]"
		}
		fmt.Fprintf(&b, "  %s %s - %s\n", usage, c.Emoji, c.Description)
	}
	b.WriteString("\nYou can also trigger commands with natural language, for example:\n")
	b.WriteString("  \"Help me with my math homework\" activates /study\n")
	b.WriteString("  \"Check my grammar in this text\" activates /proofread\n")
	b.WriteString("  \"Recommend a movie to watch\" activates /entertainment\n")
	b.WriteString("  \"Create a spreadsheet for tracking expenses\" activates /excel\n")
	b.WriteString("  \"Make a presentation about climate change\" activates /presentation")
	return b.String()
}

func languageConfirmation(sess *session.Session) string {
	source := sess.Context[session.CtxSourceLanguage]
	if source == "" || strings.EqualFold(source, "auto") {
		source = "Auto-detect"
	}
	target := sess.Context[session.CtxTargetLanguage]
	if target == "" {
		target = "english"
	}
	return fmt.Sprintf("Updated translation settings: source language %s, target language %s. Enter text to translate.", source, target)
}

func fileListing(sess *session.Session) string {
	if file := sess.Context[session.CtxAttachedFile]; file != "" {
		return fmt.Sprintf("Files available in this conversation:\n  %s", file)
	}
	return "No files are attached to this conversation yet. Upload a file or mention one by name to make it available."
}

func failureMessage() string {
	return "Sorry, I encountered an error with this module. Please try again or try a different command."
}

func timeoutMessage() string {
	return "Sorry, that request took too long to complete. Please try again — shorter input often helps."
}
