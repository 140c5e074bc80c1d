package memory

import (
	"testing"
	"time"

	"github.com/openpulse/pulse/internal/core"
)

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no technical terms",
			text: "oi, tudo bem?",
			want: nil,
		},
		{
			name: "single language",
			text: "Estou escrevendo um script em Python",
			want: []string{"python"},
		},
		{
			// "sql" matches inside "postgresql"; substring semantics are intended.
			name: "multiple terms sorted",
			text: "deploy do docker com postgresql",
			want: []string{"deploy", "docker", "postgresql", "sql"},
		},
		{
			name: "diacritics ignored",
			text: "Migração do banco PostgreSQL",
			want: []string{"postgresql", "sql"},
		},
		{
			name: "multiword term",
			text: "tem um memory leak no servidor",
			want: []string{"memory leak"},
		},
		{
			name: "duplicates collapse",
			text: "docker, docker e mais docker",
			want: []string{"docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopics(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractTopics() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractTopics()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractFacts(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		text           string
		wantCategories []core.FactCategory
	}{
		{
			name:           "no triggers",
			text:           "oi, tudo bem?",
			wantCategories: nil,
		},
		{
			name:           "tech stack",
			text:           "trabalho com Go no backend",
			wantCategories: []core.FactCategory{core.CategoryTechStack},
		},
		{
			name:           "accented trigger normalizes",
			text:           "não gosto de frameworks pesados",
			wantCategories: []core.FactCategory{core.CategoryPreference},
		},
		{
			name:           "two categories yield two facts",
			text:           "prefiro typescript e estou aprendendo rust",
			wantCategories: []core.FactCategory{core.CategoryPreference, core.CategoryLearning},
		},
		{
			name: "multiple triggers in one category yield one fact",
			text: "prefiro vim e gosto de tmux",
			wantCategories: []core.FactCategory{
				core.CategoryPreference,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := ExtractFacts("user-1", tt.text, nil, now)
			if len(facts) != len(tt.wantCategories) {
				t.Fatalf("ExtractFacts() returned %d facts, want %d", len(facts), len(tt.wantCategories))
			}
			for i, fact := range facts {
				if fact.Category != tt.wantCategories[i] {
					t.Errorf("fact[%d].Category = %q, want %q", i, fact.Category, tt.wantCategories[i])
				}
				if fact.Content != tt.text {
					t.Errorf("fact[%d].Content = %q, want full turn text", i, fact.Content)
				}
				if fact.Confidence != 0.8 {
					t.Errorf("fact[%d].Confidence = %v, want 0.8", i, fact.Confidence)
				}
				if fact.ID == "" {
					t.Errorf("fact[%d] has empty id", i)
				}
			}
			if len(facts) == 2 && facts[0].ID == facts[1].ID {
				t.Error("distinct facts share an id")
			}
		})
	}
}

func TestIsSolution(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"para resolver, aumente o timeout do pool", true},
		{"Basta reiniciar o serviço", true},
		{"recomendo usar índices compostos aqui", true},
		{"a solução é trocar a query", true},
		{"que dia bonito hoje", false},
		{"não sei o que está acontecendo", false},
	}

	for _, tt := range tests {
		if got := IsSolution(tt.text); got != tt.want {
			t.Errorf("IsSolution(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
