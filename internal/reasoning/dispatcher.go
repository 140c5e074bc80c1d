package reasoning

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/log"
)

const (
	fastConfidence       = 0.9
	deepConfidence       = 0.95
	unverifiedConfidence = 0.35
	cacheWriteThreshold  = 0.7
	cachedResultLatency  = 5 * time.Millisecond
)

const (
	apologyText    = "Deu ruim aqui. Tenta de novo?"
	unverifiedText = "Não consegui verificar informações recentes sobre isso, então qualquer resposta poderia estar desatualizada (não verificado)."

	disclosureMarker = "Verificação:"
)

// FastGenerationConfig bounds the cheap conversational path.
func FastGenerationConfig() core.GenerationConfig {
	return core.GenerationConfig{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 1024,
	}
}

// DeepGenerationConfig enables code execution and thinking-trace capture.
func DeepGenerationConfig() core.GenerationConfig {
	return core.GenerationConfig{
		Temperature:     0.8,
		TopP:            0.95,
		TopK:            64,
		MaxOutputTokens: 4096,
		CodeExecution:   true,
		IncludeThoughts: true,
		ThinkingBudget:  1024,
	}
}

// FreshnessGate classifies time-sensitive queries and resolves external
// verification for them.
type FreshnessGate interface {
	ShouldSearch(text string) bool
	Context(ctx context.Context, text string) core.RealtimeContext
}

// Request is one dispatch call from the owning agent, which supplies the
// raw input, the assembled context bundle and an optional forced mode.
type Request struct {
	Input      string
	Context    string
	ForcedMode core.ReasoningMode
}

// Dispatcher routes each request through complexity scoring, caching,
// freshness gating and provider dispatch. Per-request failures degrade to
// valid results; the only error Process returns is context cancellation.
type Dispatcher struct {
	fast        core.CompletionProvider
	deep        core.CompletionProvider
	gate        FreshnessGate
	cache       *ResponseCache
	analytics   *Analytics
	threshold   int
	instruction string
	now         func() time.Time
	logWG       sync.WaitGroup
}

func NewDispatcher(fast, deep core.CompletionProvider, gate FreshnessGate, cache *ResponseCache, analytics *Analytics, threshold int, instruction string) *Dispatcher {
	if threshold <= 0 {
		threshold = DefaultDeepThreshold
	}
	return &Dispatcher{
		fast:        fast,
		deep:        deep,
		gate:        gate,
		cache:       cache,
		analytics:   analytics,
		threshold:   threshold,
		instruction: instruction,
		now:         time.Now,
	}
}

func (d *Dispatcher) Process(ctx context.Context, req Request) (core.ReasoningResult, error) {
	start := time.Now()
	logger := log.FromCtx(ctx)

	score := ComplexityScore(req.Input)
	forced := req.ForcedMode != ""
	mode := req.ForcedMode
	if !forced {
		mode = d.selectMode(score)
	}
	timeSensitive := d.gate.ShouldSearch(req.Input)

	logger.Debug().
		Int("complexity", score).
		Str("mode", string(mode)).
		Bool("time_sensitive", timeSensitive).
		Msg("dispatch decision")

	if !forced && !timeSensitive {
		if cached, ok := d.cache.Get(req.Input); ok {
			logger.Info().Msg("response cache hit")
			cached.Latency = cachedResultLatency
			return cached, nil
		}
	}

	var rc core.RealtimeContext
	if timeSensitive {
		rc = d.gate.Context(ctx, req.Input)
		if err := ctx.Err(); err != nil {
			return core.ReasoningResult{}, err
		}

		// Nothing verifiable: answer with the fixed low-confidence
		// disclosure instead of letting the model guess.
		if !rc.Verified() {
			result := core.ReasoningResult{
				Mode:       mode,
				Text:       d.appendDisclosure(unverifiedText, rc),
				Confidence: unverifiedConfidence,
				Latency:    time.Since(start),
			}
			d.logDecision(ctx, req.Input, mode, score, result)
			return result, nil
		}
	}

	promptContext := req.Context
	if rc.Verified() {
		promptContext = strings.TrimSpace(promptContext + "\n\n" + rc.Text)
	}

	var result core.ReasoningResult
	if mode == core.ModeFast {
		result = d.fastResponse(ctx, req.Input, promptContext)
	} else {
		result = d.deepReasoning(ctx, req.Input, promptContext)
	}
	if err := ctx.Err(); err != nil {
		return core.ReasoningResult{}, err
	}
	result.Latency = time.Since(start)

	if timeSensitive {
		result.Text = d.appendDisclosure(result.Text, rc)
	}

	if !forced && !timeSensitive && result.Confidence > cacheWriteThreshold {
		d.cache.Set(req.Input, result)
	}

	d.logDecision(ctx, req.Input, mode, score, result)

	logger.Info().
		Str("mode", string(result.Mode)).
		Dur("latency", result.Latency).
		Msg("dispatch complete")

	return result, nil
}

func (d *Dispatcher) selectMode(score int) core.ReasoningMode {
	if score >= d.threshold {
		return core.ModeDeep
	}
	return core.ModeFast
}

func (d *Dispatcher) fastResponse(ctx context.Context, input, promptContext string) core.ReasoningResult {
	prompt := BuildFastPrompt(d.instruction, promptContext, input)

	completion, err := d.fast.Generate(ctx, prompt, FastGenerationConfig())
	if err != nil {
		log.FromCtx(ctx).Error().
			Err(&core.ProviderError{Mode: core.ModeFast, Err: err}).
			Msg("fast generation failed")
		return core.ReasoningResult{
			Mode:       core.ModeFast,
			Text:       apologyText,
			Confidence: 0,
		}
	}

	return core.ReasoningResult{
		Mode:       core.ModeFast,
		Text:       completion.Text,
		Confidence: fastConfidence,
	}
}

func (d *Dispatcher) deepReasoning(ctx context.Context, input, promptContext string) core.ReasoningResult {
	prompt := BuildDeepPrompt(d.instruction, promptContext, input)

	completion, err := d.deep.Generate(ctx, prompt, DeepGenerationConfig())
	if err != nil {
		// One level of graceful fallback; the fast path carries its own
		// apology if it fails too.
		log.FromCtx(ctx).Warn().
			Err(&core.ProviderError{Mode: core.ModeDeep, Err: err}).
			Msg("deep generation failed, degrading to fast path")
		return d.fastResponse(ctx, input, promptContext)
	}

	return core.ReasoningResult{
		Mode:       core.ModeDeep,
		Text:       completion.Text,
		Thinking:   completion.Thinking,
		ToolsUsed:  completion.Tools,
		Confidence: deepConfidence,
	}
}

// appendDisclosure attaches the verification footer to a time-sensitive
// answer. Texts that already carry the footer pass through unchanged.
func (d *Dispatcher) appendDisclosure(text string, rc core.RealtimeContext) string {
	if strings.Contains(text, disclosureMarker) {
		return text
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n---\n")

	stamp := d.now().Format("02/01/2006 15:04")
	if rc.Verified() {
		fmt.Fprintf(&b, "Verificação: confirmada em %s\n", stamp)
		b.WriteString("Fontes:\n")
		for i, src := range rc.Sources {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, src.Title, src.URL)
		}
	} else {
		fmt.Fprintf(&b, "Verificação: não verificada em %s\n", stamp)
		b.WriteString("Fontes: indisponível\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) logDecision(ctx context.Context, input string, mode core.ReasoningMode, score int, result core.ReasoningResult) {
	if d.analytics == nil {
		return
	}
	d.logWG.Add(1)
	go func() {
		defer d.logWG.Done()
		d.analytics.LogDecision(context.WithoutCancel(ctx), input, mode, score, result)
	}()
}

// Flush blocks until every in-flight decision-log append has finished.
// Call before process exit so short-lived runs do not drop records.
func (d *Dispatcher) Flush() {
	d.logWG.Wait()
}
