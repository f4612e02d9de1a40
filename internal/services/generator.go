package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/invopop/jsonschema"
)

// GeneratedCard is one card as returned by the model.
type GeneratedCard struct {
	Front      string   `json:"front" jsonschema_description:"The question or prompt for the flashcard"`
	Back       string   `json:"back" jsonschema_description:"The answer or explanation for the flashcard"`
	Difficulty string   `json:"difficulty" jsonschema:"enum=easy,enum=medium,enum=hard" jsonschema_description:"The difficulty level of the card"`
	Tags       []string `json:"tags" jsonschema_description:"Relevant tags for the card"`
}

// GeneratedDeck is the structured output the model must produce.
type GeneratedDeck struct {
	Cards []GeneratedCard `json:"cards"`
}

// Generator produces flashcards from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*GeneratedDeck, error)
	Configured() bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string             `json:"name"`
	Strict bool               `json:"strict"`
	Schema *jsonschema.Schema `json:"schema"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

const systemPrompt = "You are an expert educator who writes high-quality study flashcards. " +
	"Respond only with JSON matching the provided schema."

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint with
// a JSON schema response format.
type OpenAIGenerator struct {
	client *resty.Client
	apiKey string
	model  string
	schema *jsonschema.Schema
}

func NewOpenAIGenerator(baseURL, apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetTimeout(timeout)
	return &OpenAIGenerator{
		client: c,
		apiKey: apiKey,
		model:  model,
		schema: OutputSchema(),
	}
}

// OutputSchema reflects the strict JSON schema for GeneratedDeck.
func OutputSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(&GeneratedDeck{})
	s.Version = ""
	s.ID = ""
	return s
}

func (g *OpenAIGenerator) Configured() bool {
	return g.apiKey != ""
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (*GeneratedDeck, error) {
	if !g.Configured() {
		return nil, ErrGenerationNotConfigured
	}

	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "flashcards",
				Strict: true,
				Schema: g.schema,
			},
		},
	}

	var out chatResponse
	var apiErr chatError
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, fmt.Errorf("chat completion returned %d: %s", resp.StatusCode(), msg)
	}

	if len(out.Choices) == 0 {
		return nil, errors.New("empty response from provider")
	}
	choice := out.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("provider refused: %s", choice.Message.Refusal)
	}
	return ParseGeneratedDeck(choice.Message.Content)
}

// ParseGeneratedDeck decodes model output, tolerating a markdown code fence.
func ParseGeneratedDeck(content string) (*GeneratedDeck, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var deck GeneratedDeck
	if err := json.Unmarshal([]byte(content), &deck); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return &deck, nil
}

// BuildPrompt renders the user instruction for a generation request.
func BuildPrompt(topic, content string, difficulty string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d flashcards about %q.\n", count, topic)
	if content != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", content)
	}
	fmt.Fprintf(&b, `
Create high-quality flashcards that:
- Have clear, concise questions on the front
- Provide accurate, helpful answers on the back
- Are appropriate for %s difficulty level
- Include relevant tags for categorization
- Avoid yes/no questions
- Focus on understanding and recall

Make the questions engaging and educational.`, difficulty)
	return b.String()
}
