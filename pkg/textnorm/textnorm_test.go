package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "Hello World", "hello world"},
		{"portuguese diacritics", "Versão do Código", "versao do codigo"},
		{"mixed", "NÃO consigo depurar", "nao consigo depurar"},
		{"cedilla", "Solução", "solucao"},
		{"already normalized", "preco atual", "preco atual"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint("qual a capital do Brasil?")

	if len(base) != 12 {
		t.Fatalf("fingerprint length = %d, want 12", len(base))
	}
	if Fingerprint("  QUAL A CAPITAL DO BRASIL?  ") != base {
		t.Error("case and surrounding whitespace should not change the fingerprint")
	}
	if Fingerprint("qual a capital da Argentina?") == base {
		t.Error("different questions should not collide")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 300)

	if got := Truncate("short", 250); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	got := Truncate(long, 250)
	if len(got) != 253 || !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate long: len = %d, suffix = %q", len(got), got[len(got)-3:])
	}
}
