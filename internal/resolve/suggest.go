package resolve

import (
	"math"
	"sort"
	"strings"

	"github.com/lightyearai/liya/internal/catalog"
)

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// Suggest ranks catalog commands by textual similarity to an unrecognized
// token and returns the top three. The scoring is a deliberate heuristic,
// not an edit-distance metric; its exact behavior is user-visible, so the
// steps below must not be "improved":
//
//	+10 if the command name starts with the token
//	+5 if the command name contains the token (additive with the above)
//	+1 per token character present in the name, consuming each matched
//	   character so repeated letters are not double-counted
//	then divided by sqrt(max(1, len(name)-len(token))) to penalize
//	candidates much longer than the input.
//
// Ties keep catalog order (stable sort).
func Suggest(token string) []*catalog.Command {
	token = strings.ToLower(token)
	if token == "" {
		return nil
	}

	all := catalog.All()
	scored := make([]scoredCommand, len(all))
	for i, cmd := range all {
		scored[i] = scoredCommand{cmd: cmd, score: similarity(token, cmd.Name)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	n := maxSuggestions
	if len(scored) < n {
		n = len(scored)
	}
	out := make([]*catalog.Command, n)
	for i := 0; i < n; i++ {
		out[i] = scored[i].cmd
	}
	return out
}

type scoredCommand struct {
	cmd   *catalog.Command
	score float64
}

func similarity(token, name string) float64 {
	score := 0.0

	if strings.HasPrefix(name, token) {
		score += 10
	}
	if strings.Contains(name, token) {
		score += 5
	}

	// Multiset character overlap: each name character can satisfy at most
	// one token character.
	remaining := []rune(name)
	for _, r := range token {
		for i, c := range remaining {
			if c == r {
				score++
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}

	return score / math.Sqrt(math.Max(1, float64(len(name)-len(token))))
}
