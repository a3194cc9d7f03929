package claude

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/siteloom/internal/draft"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner          anthropic.Client
	model          anthropic.Model
	promptTemplate string
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
// model defaults to DefaultModel. Extra options are passed to the SDK.
func NewClient(apiKey, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	m := anthropic.Model(DefaultModel)
	if model != "" {
		m = anthropic.Model(model)
	}

	return &Client{inner: inner, model: m}, nil
}

// WithPromptTemplate makes ProposeSchedule render prompts from a template file.
func (c *Client) WithPromptTemplate(path string) *Client {
	c.promptTemplate = path
	return c
}

// ProposeSchedule asks Claude for a draft schedule covering the request's
// scope. The reply goes through draft.Parse; it still has to be accepted
// with draft.Accept before use.
func (c *Client) ProposeSchedule(ctx context.Context, req ProposalRequest) (*draft.Draft, error) {
	prompt, err := RenderPrompt(req, c.promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	text, err := c.complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	d, err := draft.Parse([]byte(stripJSONFences(text)))
	if err != nil {
		return nil, fmt.Errorf("parse claude response: %w", err)
	}
	return d, nil
}

const narratePrompt = `You are a construction project controller writing a status note for the site owner.

You will receive a structured report: schedule summary, critical path, earned value metrics, forecast and alerts.

Write a short narrative covering:
- Where the project stands against plan, in days and money.
- Which activities drive the finish date.
- The alerts that need action this week, and what to do about them.

Keep it under 200 words. Do not repeat the tables. Use plain language.
`

// Narrate sends a structured project report to Claude and returns a
// human-readable status note.
func (c *Client) Narrate(ctx context.Context, report string) (string, error) {
	var userContent strings.Builder
	userContent.WriteString("## Project Report\n\n")
	userContent.WriteString(report)

	text, err := c.complete(ctx, narratePrompt, userContent.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(4096),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Strip opening fence line
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
