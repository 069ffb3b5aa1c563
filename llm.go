package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// Generator produces a short answer for a benchmark question.
type Generator interface {
	Generate(ctx context.Context, question string) (string, LLMUsage, error)
}

// buildAnswerPrompt asks for a minimal answer span so exact/loose matching
// stays meaningful.
func buildAnswerPrompt(question string) string {
	return "You are a concise QA model. " +
		"Answer with ONLY the minimal text span (no punctuation, no extra words). " +
		"If unsure, answer exactly: Unknown.\n" +
		fmt.Sprintf("Q: %s\nA:", question)
}

// cleanAnswerSpan trims an LLM answer down to a comparable span.
func cleanAnswerSpan(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "Answer:", "")
	s = strings.ReplaceAll(s, "A:", "")
	s = strings.TrimSpace(s)
	return strings.Trim(s, spanPunct)
}

// LLMGenerator answers questions through the configured provider.
type LLMGenerator struct {
	Provider        string // "anthropic" or "openai"
	Model           string
	AnthropicAPIKey string
	OpenAIAPIKey    string
}

func (g *LLMGenerator) Generate(ctx context.Context, question string) (string, LLMUsage, error) {
	prompt := buildAnswerPrompt(question)

	var text string
	var usage LLMUsage
	var err error
	switch g.Provider {
	case "openai":
		model := g.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		text, usage, err = callOpenAI(ctx, g.OpenAIAPIKey, model, "Answer concisely.", prompt)
	default:
		model := g.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		text, usage, err = callAnthropic(ctx, g.AnthropicAPIKey, model, "Answer concisely.", prompt)
	}
	if err != nil {
		return "", usage, err
	}
	return cleanAnswerSpan(text), usage, nil
}

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := doWithRetry(ctx, externalHTTPClient, req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", LLMUsage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", LLMUsage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := LLMUsage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}
	return openAIResp.Choices[0].Message.Content, usage, nil
}
