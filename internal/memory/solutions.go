package memory

import (
	"strings"

	"github.com/openpulse/pulse/pkg/textnorm"
)

// solutionIndicators classify an assistant turn as a reusable solution.
var solutionIndicators = []string{
	"funciona assim", "solucao", "correcao", "fix",
	"para resolver", "basta", "voce pode",
	"recomendo", "sugestao", "tente",
}

// IsSolution reports whether the text reads like a solution worth keeping.
func IsSolution(text string) bool {
	normalized := textnorm.Normalize(text)
	for _, indicator := range solutionIndicators {
		if strings.Contains(normalized, indicator) {
			return true
		}
	}
	return false
}
