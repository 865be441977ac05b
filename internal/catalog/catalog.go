package catalog

import "regexp"

// Command is one invocable feature module. Commands are defined once at
// process start and never mutated; matching logic only uses Name and
// Triggers, the rest is presentation metadata surfaced by /help.
type Command struct {
	Name        string
	Label       string
	Emoji       string
	Description string
	Tooltip     string
	Triggers    []*regexp.Regexp
}

// commands is the fixed catalog in display order. Order matters: the
// intent classifier iterates it front to back and the suggester uses it
// as the tie-break, so reordering entries is a user-visible change.
var commands = []*Command{
	{
		Name:        "study",
		Label:       "Study Mode",
		Emoji:       "📚",
		Description: "Get help with homework and studying",
		Tooltip:     "Ask questions about homework, get explanations for concepts, and receive help with studying",
		Triggers:    studyTriggers,
	},
	{
		Name:        "proofread",
		Label:       "Proofreading Mode",
		Emoji:       "✍️",
		Description: "Check grammar and improve writing",
		Tooltip:     "Check your text for grammar errors, improve writing style, and get suggestions for better phrasing",
		Triggers:    proofreadTriggers,
	},
	{
		Name:        "entertainment",
		Label:       "Entertainment Mode",
		Emoji:       "🎮",
		Description: "Chat about movies, music, etc.",
		Tooltip:     "Discuss movies, TV shows, music, books, and games with personalized recommendations",
		Triggers:    entertainmentTriggers,
	},
	{
		Name:        "excel",
		Label:       "Excel Generator",
		Emoji:       "📊",
		Description: "Generate Excel spreadsheets",
		Tooltip:     "Generate Excel spreadsheets from natural language descriptions, with formulas and formatting",
		Triggers:    excelTriggers,
	},
	{
		Name:        "presentation",
		Label:       "Presentation Builder",
		Emoji:       "🎯",
		Description: "Create presentation slides",
		Tooltip:     "Create professional presentation slides with content, formatting, and design elements",
		Triggers:    presentationTriggers,
	},
	{
		Name:        "translate",
		Label:       "Translation Mode",
		Emoji:       "🌐",
		Description: "Translate text between languages",
		Tooltip:     "Translate text between multiple languages with accurate preservation of meaning",
		Triggers:    translateTriggers,
	},
	{
		Name:        "summarize",
		Label:       "Summarize Mode",
		Emoji:       "📝",
		Description: "Summarize long text or documents",
		Tooltip:     "Create concise summaries of long documents while preserving key information",
		Triggers:    summarizeTriggers,
	},
	{
		Name:        "clear",
		Label:       "Clear Chat",
		Emoji:       "🧹",
		Description: "Clear the current chat",
		Tooltip:     "Reset the conversation and start fresh while keeping your session",
		Triggers:    clearTriggers,
	},
	{
		Name:        "help",
		Label:       "Help",
		Emoji:       "❓",
		Description: "Show this help message",
		Tooltip:     "Display this list of available commands and their descriptions",
		Triggers:    helpTriggers,
	},
}

// byName is built once at init for exact-name lookup.
var byName = func() map[string]*Command {
	m := make(map[string]*Command, len(commands))
	for _, c := range commands {
		m[c.Name] = c
	}
	return m
}()

// FindByName returns the command with the given name, or nil if no such
// command exists. Unknown names are not an error.
func FindByName(name string) *Command {
	return byName[name]
}

// All returns the full catalog in fixed insertion order. Callers must not
// modify the returned slice or the commands it points to.
func All() []*Command {
	return commands
}
