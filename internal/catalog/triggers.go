package catalog

import "regexp"

// Natural-language trigger patterns, one ordered set per command. Every
// pattern is anchored at the start of the (lowercased, trimmed) input so a
// phrase buried mid-sentence never activates a module. Pattern order within
// a set is first-match-wins, as is catalog order across sets — text like
// "help me with my homework" matches both study and help, and study wins
// only because it precedes help in the catalog.
var (
	studyTriggers = compile(
		`^(?:can you |please |)(?:help me |)(?:with |)(?:my |)(?:homework|studying|assignment|problem|question|math|science|history|learn|understand)`,
		`^(?:i need help |i'm struggling |i am struggling |)(?:with |)(?:my |)(?:homework|studying|assignment|problem|question)`,
		`^explain (?:to me |)(?:how|what|why|when|where|who|which)`,
		`^(?:can you |)(?:teach me|explain|help me understand)`,
	)

	proofreadTriggers = compile(
		`^(?:can you |please |)(?:proofread|check|review|edit|correct|fix|improve) (?:my |this |the |)(?:text|writing|grammar|spelling|essay|paper|document)`,
		`^(?:can you |please |)(?:help me |)(?:with |)(?:my |)(?:writing|grammar|spelling)`,
		`^(?:check|correct|fix|improve) (?:the |my |this |)(?:grammar|spelling|text|writing|essay|document)`,
		`^(?:find|fix) (?:errors|mistakes|typos|issues) (?:in|with) (?:my|this|the) (?:text|writing|essay|document)`,
	)

	entertainmentTriggers = compile(
		`^(?:let's |can we |)(?:talk|chat) about (?:movies|tv|shows|music|books|entertainment|games|series|films)`,
		`^(?:recommend|suggest)(?: me|) (?:a |some |)(?:movie|tv show|book|song|music|game)`,
		`^(?:what|which) (?:movie|show|book|song|music|game)`,
		`^(?:i'm|i am|i feel) (?:bored|looking for something to watch|looking for entertainment)`,
	)

	excelTriggers = compile(
		`^(?:can you |please |)(?:create|make|generate|build|design|produce) (?:an |a |)(?:excel|spreadsheet)`,
		`^(?:i need |i want |help me |)(?:to |)(?:create|make|build|design) (?:an |a |)(?:excel|spreadsheet)`,
		`^(?:can you |please |)(?:help me |)(?:with |)(?:excel|spreadsheet|data|calculation|formula|table)`,
		`^(?:excel |spreadsheet |)(?:for|to track|to calculate|to analyze)`,
	)

	presentationTriggers = compile(
		`^(?:can you |please |)(?:create|make|generate|build|design|produce) (?:a |)(?:presentation|slide|slides|slideshow|deck|powerpoint)`,
		`^(?:i need |i want |help me |)(?:to |)(?:create|make|build|design) (?:a |)(?:presentation|slide|slides|slideshow|deck|powerpoint)`,
		`^(?:can you |please |)(?:help me |)(?:with |)(?:my |a |)(?:presentation|slides|slideshow|powerpoint)`,
		`^(?:presentation|slides|powerpoint) (?:about|on|for) `,
	)

	translateTriggers = compile(
		`^(?:can you |please |)(?:translate|convert) (?:this|the following|text|sentence|paragraph|document)`,
		`^(?:how|what)(?:'s| is| does) (?:this|that|it) (?:say |written |mean |translated |)(?:in|to) (?:[a-z]+)`,
		`^(?:translate|convert) (?:from|to) ([a-z]+)`,
		`^(?:say|write) (?:this|the following|it) (?:in|to) ([a-z]+)`,
	)

	summarizeTriggers = compile(
		`^(?:can you |please |)(?:summarize|summarise|sum up|condense|shorten|give me a summary of) (?:this|the|following|text|document|article|essay|paper)`,
		`^(?:i need |i want |give me |)(?:a |the |)(?:summary|brief|short version|tldr|overview|main points) (?:of|for|about)`,
		`^(?:what are |)(?:the |)(?:key|main|important) (?:points|ideas|concepts|takeaways|findings) (?:in|from|of)`,
		`^(?:tldr|too long didn't read|too long didnt read)`,
	)

	clearTriggers = compile(
		`^(?:can you |please |)(?:clear|reset|restart|clean|new) (?:the |this |our |)(?:chat|conversation|discussion|session)`,
		`^(?:let's |i want to |i would like to |can we |)(?:start |begin |)(?:over|again|fresh|new|afresh)`,
		`^(?:clear|reset|restart|clean) (?:everything|all)`,
		`^(?:start|begin) (?:a |)(?:new|fresh) (?:chat|conversation)`,
	)

	helpTriggers = compile(
		`^(?:can you |please |)(?:show|tell|give) me (?:the |all |available |)(?:commands|options|features|help)`,
		`^(?:what|which) (?:commands|features|functions) (?:can you|do you|are) (?:do|use|have|support|available)`,
		`^(?:help|assistance|commands|options|menu|what can you do)`,
		`^(?:how do i|how can i|how to) (?:use|access|get to) (?:the |)(?:commands|features|options)`,
	)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}
