package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openpulse/pulse/internal/core"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini talks to the generateContent REST endpoint. One instance is bound
// to one model; the fast and deep paths use separate instances.
type Gemini struct {
	baseProvider
}

func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider(defaultGeminiBaseURL, apiKey, model),
	}
}

// NewGeminiWithBaseURL exists for tests against a local HTTP stub.
func NewGeminiWithBaseURL(baseURL, apiKey, model string) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider(baseURL, apiKey, model),
	}
}

type geminiPart struct {
	Text           string `json:"text,omitempty"`
	Thought        bool   `json:"thought,omitempty"`
	ExecutableCode *struct {
		Language string `json:"language"`
		Code     string `json:"code"`
	} `json:"executableCode,omitempty"`
	CodeExecutionResult *struct {
		Outcome string `json:"outcome"`
		Output  string `json:"output"`
	} `json:"codeExecutionResult,omitempty"`
}

func (g *Gemini) Generate(ctx context.Context, prompt string, cfg core.GenerationConfig) (core.Completion, error) {
	genConfig := map[string]any{
		"temperature":     cfg.Temperature,
		"topP":            cfg.TopP,
		"topK":            cfg.TopK,
		"maxOutputTokens": cfg.MaxOutputTokens,
	}
	if cfg.IncludeThoughts {
		genConfig["thinkingConfig"] = map[string]any{
			"includeThoughts": true,
			"thinkingBudget":  cfg.ThinkingBudget,
		}
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": genConfig,
	}
	if cfg.CodeExecution {
		body["tools"] = []map[string]any{
			{"codeExecution": map[string]any{}},
		}
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent?key=%s", g.model, url.QueryEscape(g.apiKey))
	resp, err := g.doRequest(ctx, "POST", path, body, nil)
	if err != nil {
		return core.Completion{}, fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Completion{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.Completion{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return core.Completion{}, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Candidates) == 0 {
		return core.Completion{}, fmt.Errorf("no candidates in response")
	}

	return parseParts(apiResp.Candidates[0].Content.Parts), nil
}

// parseParts splits candidate parts into final text, thought segments and
// tool-invocation records. An execution result attaches to the most recent
// code invocation.
func parseParts(parts []geminiPart) core.Completion {
	var (
		textParts     []string
		thinkingParts []string
		tools         []core.ToolInvocation
	)

	for _, part := range parts {
		switch {
		case part.Thought && part.Text != "":
			thinkingParts = append(thinkingParts, strings.TrimSpace(part.Text))
		case part.ExecutableCode != nil:
			tools = append(tools, core.ToolInvocation{
				Type:     "code_execution",
				Language: part.ExecutableCode.Language,
				Code:     part.ExecutableCode.Code,
			})
		case part.CodeExecutionResult != nil:
			if len(tools) > 0 {
				tools[len(tools)-1].Result = part.CodeExecutionResult.Output
			}
		case part.Text != "":
			textParts = append(textParts, part.Text)
		}
	}

	return core.Completion{
		Text:     strings.Join(textParts, ""),
		Thinking: strings.Join(thinkingParts, "\n\n"),
		Tools:    tools,
	}
}
