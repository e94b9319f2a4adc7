package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"deckgen-backend/internal/config"
)

// PlannerService asks a chat completion model for a slide outline. The
// caller's API token is applied per request and never stored or logged.
type PlannerService struct {
	baseURL      string
	defaultModel string
	timeout      time.Duration
	maxRetries   int
}

func NewPlannerService(cfg *config.Config) *PlannerService {
	return &PlannerService{
		baseURL:      cfg.OpenAIBaseURL,
		defaultModel: cfg.DefaultModel,
		timeout:      time.Duration(cfg.LLMTimeoutSecs) * time.Second,
		maxRetries:   cfg.LLMMaxRetries,
	}
}

// PlanRequest carries one outline request to the model.
type PlanRequest struct {
	Text         string
	Guidance     string
	NumSlides    int
	IncludeNotes bool
	Model        string
	APIKey       string
	BaseURL      string
}

var ErrNoAPIKey = errors.New("planner: api key required")

// PlanOutline returns the model's outline as raw JSON, repaired into valid
// JSON when the model wraps or mangles it. Schema enforcement is the
// caller's job. Errors from the SDK may echo request credentials, so callers
// must not log them verbatim.
func (s *PlannerService) PlanOutline(ctx context.Context, req PlanRequest) ([]byte, error) {
	if req.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = s.baseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(req.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(s.maxRetries),
		option.WithRequestTimeout(s.timeout),
	)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(plannerSystemPrompt),
			openai.UserMessage(buildUserPrompt(req)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("plan outline: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("plan outline: empty choices")
	}

	raw := extractJSONObject(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, errors.New("plan outline: no JSON object in response")
	}
	repaired, err := repairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("plan outline: unusable JSON: %w", err)
	}
	return []byte(repaired), nil
}

const plannerSystemPrompt = `You are a presentation planning assistant.
Respond with ONLY a JSON object, no markdown fences and no commentary.
Schema:
{
  "title": string,
  "slides": [{"title": string, "bullets": [string], "layout": string, "notes": string}],
  "estimated_slide_count": integer
}
Allowed layout values: "auto", "Title and Content", "Two Content",
"Content with Caption", "Picture with Caption", "Blank".
Keep bullets short and factual. Never invent facts absent from the source text.`

func buildUserPrompt(req PlanRequest) string {
	var b strings.Builder
	if req.NumSlides > 0 {
		fmt.Fprintf(&b, "Create exactly %d slides.\n", req.NumSlides)
	} else {
		b.WriteString("Choose a sensible slide count for the content.\n")
	}
	if g := strings.TrimSpace(req.Guidance); g != "" {
		fmt.Fprintf(&b, "Audience and tone guidance: %s\n", g)
	}
	if req.IncludeNotes {
		b.WriteString("Include brief speaker notes for each slide.\n")
	} else {
		b.WriteString("Leave notes empty.\n")
	}
	b.WriteString("\nSource text:\n")
	b.WriteString(req.Text)
	return b.String()
}

// extractJSONObject returns the first balanced top-level JSON object in s,
// tolerating leading prose and trailing commentary. String literals and
// escapes are honored while matching braces.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unbalanced: hand the tail to the repair pass.
	return s[start:]
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

func repairJSON(raw string) (string, error) {
	if json.Valid([]byte(raw)) {
		return raw, nil
	}
	if fixed, err := jsonrepair.JSONRepair(raw); err == nil && json.Valid([]byte(fixed)) {
		return fixed, nil
	}
	fixed := trailingCommaRe.ReplaceAllString(raw, "$1")
	if json.Valid([]byte(fixed)) {
		return fixed, nil
	}
	return "", errors.New("not repairable")
}
