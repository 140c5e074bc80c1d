package reasoning

import (
	"strings"

	"github.com/openpulse/pulse/pkg/textnorm"
)

// DefaultDeepThreshold is the score at which a request is routed to deep
// reasoning. It is deliberately high: the fast path handles everything that
// is not clearly a hard technical problem.
const DefaultDeepThreshold = 8

// criticalKeywords are normalized, so accented spellings collapse with
// their plain forms.
var criticalKeywords = []string{
	"debug", "debugar",
	"erro critico", "exception", "traceback",
	"crash", "nao funciona de jeito nenhum",
	"comparar tecnologias", "qual biblioteca usar",
	"arquitetura do sistema", "design pattern",
	"otimizacao de performance", "bottleneck",
	"refatoracao complexa", "algoritmo eficiente",
}

// ComplexityScore rates how much reasoning an input likely needs: +3 per
// critical keyword, +4 for a fenced code block, +3 when longer than 60
// words, +3 when it asks more than two questions.
func ComplexityScore(input string) int {
	normalized := textnorm.Normalize(input)

	score := 0
	for _, keyword := range criticalKeywords {
		if strings.Contains(normalized, keyword) {
			score += 3
		}
	}

	if strings.Contains(input, "```") {
		score += 4
	}
	if len(strings.Fields(input)) > 60 {
		score += 3
	}
	if strings.Count(input, "?") > 2 {
		score += 3
	}

	return score
}
