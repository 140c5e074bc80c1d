package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/textnorm"
)

const factConfidence = 0.8

// factTriggers maps each category to its normalized trigger phrases. The
// first matching phrase in a category emits one fact and stops that
// category; categories are checked independently, so one turn can yield up
// to one fact per category.
var factTriggers = map[core.FactCategory][]string{
	core.CategoryTechStack: {
		"uso", "trabalho com", "programo em", "desenvolvo em",
		"meu stack", "tecnologias que uso",
	},
	core.CategoryProject: {
		"estou fazendo", "trabalhando em", "projeto", "aplicacao",
		"sistema que", "desenvolvendo",
	},
	core.CategoryPreference: {
		"prefiro", "gosto de", "nao gosto", "melhor usar",
		"costumo usar", "sempre uso",
	},
	core.CategoryLearning: {
		"estudando", "aprendendo", "curso de", "tutorial",
		"quero aprender", "vou estudar",
	},
	core.CategoryProblem: {
		"sempre da erro", "problema recorrente", "toda vez",
		"nao consigo", "dificuldade com",
	},
}

// factCategories fixes the evaluation order so extraction is deterministic.
var factCategories = []core.FactCategory{
	core.CategoryTechStack,
	core.CategoryProject,
	core.CategoryPreference,
	core.CategoryLearning,
	core.CategoryProblem,
}

// ExtractFacts scans a user turn for durable facts. The fact content is the
// full turn text; no merging or deduplication happens across turns.
func ExtractFacts(userID, text string, topics []string, now time.Time) []core.Fact {
	normalized := textnorm.Normalize(text)

	var facts []core.Fact
	for _, category := range factCategories {
		for _, trigger := range factTriggers[category] {
			if strings.Contains(normalized, trigger) {
				facts = append(facts, core.Fact{
					ID:             fmt.Sprintf("%s_%s_%s", userID, category, uuid.NewString()),
					UserID:         userID,
					Category:       category,
					Content:        text,
					Confidence:     factConfidence,
					FirstMentioned: now,
					LastMentioned:  now,
					MentionCount:   1,
					Topics:         topics,
				})
				break
			}
		}
	}

	return facts
}
