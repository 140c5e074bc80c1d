package memory

import (
	"sort"
	"strings"

	"github.com/openpulse/pulse/pkg/textnorm"
)

// techVocabulary is the fixed set of technical terms recognized as topics.
// Matching is substring-based over normalized text, so multiword terms and
// short forms both work.
var techVocabulary = []string{
	// Languages
	"python", "javascript", "typescript", "java", "c#", "go", "rust",
	"php", "ruby", "swift", "kotlin", "sql",

	// Backend frameworks
	"fastapi", "django", "flask", "express", "nestjs", "spring",
	"rails", ".net", "laravel",

	// Frontend
	"react", "vue", "angular", "nextjs", "svelte", "solid",

	// Databases
	"postgresql", "mysql", "mongodb", "redis", "sqlite",
	"dynamodb", "cassandra",

	// DevOps / infra
	"docker", "kubernetes", "aws", "azure", "gcp", "terraform",
	"ansible", "jenkins", "github actions", "ci/cd",

	// Concepts
	"api", "rest", "graphql", "websocket", "microservices",
	"monolith", "serverless", "async", "sync", "orm",
	"cache", "queue", "pub/sub", "event-driven",

	// Recurring problems
	"bug", "erro", "exception", "crash", "timeout", "deadlock",
	"memory leak", "performance", "latency", "bottleneck",

	// Activities
	"deploy", "deployment", "migration", "refactor", "debug",
	"test", "testing", "ci", "cd", "monitoring", "logging",
}

// ExtractTopics returns the sorted, deduplicated set of vocabulary terms
// present in the text.
func ExtractTopics(text string) []string {
	normalized := textnorm.Normalize(text)

	found := make(map[string]struct{})
	for _, keyword := range techVocabulary {
		if strings.Contains(normalized, keyword) {
			found[keyword] = struct{}{}
		}
	}
	if len(found) == 0 {
		return nil
	}

	topics := make([]string, 0, len(found))
	for t := range found {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	return topics
}
