package reasoning

import (
	"fmt"
	"strings"
	"time"
)

// BuildFastPrompt frames the input for a direct conversational answer.
func BuildFastPrompt(instruction, context, userInput string) string {
	return strings.TrimSpace(fmt.Sprintf(`
%s

%s

---

Responda de forma DIRETA, NATURAL e CASUAL. Sem formalidades.

Usuario: %s
`, instruction, context, userInput))
}

// BuildDeepPrompt frames the input with the structured thinking/answer
// template used by the deep path.
func BuildDeepPrompt(instruction, context, userInput string) string {
	return strings.TrimSpace(fmt.Sprintf(`
%s

%s

---

# RACIOCÍNIO PROFUNDO

Problema técnico complexo detectado. Pense estruturadamente:

<thinking>
1. ENTENDIMENTO: Qual é o problema exato?
2. ANÁLISE: Causas possíveis
3. SOLUÇÃO: Melhor abordagem
4. VALIDAÇÃO: Como testar
</thinking>

<answer>
[Resposta clara e acionável]

**Próximos passos:**
1. [Ação específica]
2. [Como validar]
</answer>

Usuario: %s
`, instruction, context, userInput))
}

// TemporalGuardrail renders the recency instruction block injected into
// prompts so the model does not fall back on a stale knowledge cutoff.
func TemporalGuardrail(now time.Time) string {
	return strings.TrimSpace(fmt.Sprintf(`
# CONTEXTO TEMPORAL DA SESSAO
- Data atual (sistema): %s
- Hora atual (sistema): %s

# REGRAS DE RECENCIA
- Nunca afirme que seu conhecimento "vai ate 2024" como resposta padrao.
- Para fatos sensiveis a tempo (hoje, atual, latest, 2025+, versao, preco, lei, noticia, agenda, resultado), trate como potencialmente mutavel.
- Se nao houver verificacao externa recente no contexto, diga explicitamente que a informacao nao esta verificada.
- Quando houver dado recente confirmado, cite data e origem na resposta.
`, now.Format("2006-01-02"), now.Format("15:04:05 -0700")))
}
