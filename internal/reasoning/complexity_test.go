package reasoning

import (
	"strings"
	"testing"
)

func TestComplexityScore(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "casual greeting scores zero",
			input: "oi, tudo bem?",
			want:  0,
		},
		{
			name:  "single critical keyword",
			input: "preciso debugar esse serviço",
			want:  6, // "debugar" also contains "debug"
		},
		{
			name:  "code fence",
			input: "olha esse trecho:\n```go\nfmt.Println(1)\n```",
			want:  4,
		},
		{
			name:  "accented keyword normalizes",
			input: "tive um erro crítico em produção",
			want:  3,
		},
		{
			name:  "many questions",
			input: "como? por que? quando? onde?",
			want:  3,
		},
		{
			name:  "two questions are fine",
			input: "como? por que?",
			want:  0,
		},
		{
			name:  "very long input",
			input: strings.Repeat("palavra ", 61),
			want:  3,
		},
		{
			name:  "fence plus keyword reaches deep threshold",
			input: "me ajuda a debugar\n```python\nraise\n```",
			want:  10, // debug + debugar + fence
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComplexityScore(tt.input); got != tt.want {
				t.Errorf("ComplexityScore(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestComplexityScore_FenceNeverDecreases(t *testing.T) {
	inputs := []string{
		"",
		"oi, tudo bem?",
		"preciso debugar um crash com traceback",
		strings.Repeat("texto longo ", 40),
		"como? quando? onde? por que?",
	}

	for _, input := range inputs {
		base := ComplexityScore(input)
		fenced := ComplexityScore(input + "\n```\ncodigo\n```")
		if fenced < base {
			t.Errorf("appending a code fence decreased the score: %d -> %d for %q", base, fenced, input)
		}
	}
}
