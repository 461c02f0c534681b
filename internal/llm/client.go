package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benwu408/ai-journal/internal/model"
)

var (
	ErrMissingCredential   = errors.New("llm api key is required")
	ErrMalformedCredential = errors.New("llm api key is malformed")
	ErrUnauthorized        = errors.New("llm request unauthorized")
	ErrRateLimited         = errors.New("llm request rate limited")
	ErrInvalidResponse     = errors.New("invalid llm response")
	ErrTransport           = errors.New("llm transport error")
)

// ServerError is a 5xx from the LLM backend.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("llm server error, status=%d", e.Status)
}

type Config struct {
	BaseURL   string
	APIKey    string
	ChatModel string
	Timeout   time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	timeout    time.Duration
	httpClient *http.Client
}

// RecommendationPayload is the raw JSON-shaped recommendation object the AI
// returns. Fields may be empty; normalization happens in the consumer.
type RecommendationPayload struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionText  string `json:"actionText"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	if strings.ContainsAny(apiKey, " \t\"'") || strings.HasPrefix(strings.ToLower(apiKey), "bearer ") {
		return nil, ErrMalformedCredential
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		chatModel:  chatModel,
		timeout:    timeout,
		httpClient: &http.Client{},
	}, nil
}

// GenerateSummary produces a short free-text weekly summary of the entries.
func (c *Client) GenerateSummary(ctx context.Context, entries []model.Entry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]any{
			{"role": "system", "content": summarySystemPrompt},
			{"role": "user", "content": buildSummaryPrompt(entries)},
		},
		"temperature": 0.7,
		"max_tokens":  400,
	}

	raw, err := c.doJSON(ctx, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}
	content, err := extractAssistantContent(raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrInvalidResponse
	}
	return strings.TrimSpace(content), nil
}

// GenerateRecommendations asks for a JSON array of up to 3 recommendation
// objects and returns them raw; missing fields stay empty.
func (c *Client) GenerateRecommendations(ctx context.Context, entries []model.Entry) ([]RecommendationPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]any{
			{"role": "system", "content": recommendationSystemPrompt},
			{"role": "user", "content": buildRecommendationPrompt(entries)},
		},
		"temperature": 0.7,
		"max_tokens":  600,
	}

	raw, err := c.doJSON(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, err
	}
	content, err := extractAssistantContent(raw)
	if err != nil {
		return nil, err
	}

	var parsed []RecommendationPayload
	if err := json.Unmarshal([]byte(extractJSONPayload(content)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse recommendations: %v", ErrInvalidResponse, err)
	}
	return parsed, nil
}

// ClassifyTopics labels journal content with a subset of candidateLabels.
func (c *Client) ClassifyTopics(ctx context.Context, content string, candidateLabels []string) ([]string, error) {
	return c.classify(ctx, topicClassifySystemPrompt, content, candidateLabels)
}

// ClassifyEmotions labels journal content with a subset of candidateLabels.
func (c *Client) ClassifyEmotions(ctx context.Context, content string, candidateLabels []string) ([]string, error) {
	return c.classify(ctx, emotionClassifySystemPrompt, content, candidateLabels)
}

func (c *Client) classify(ctx context.Context, systemPrompt string, content string, candidateLabels []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildClassifyPrompt(content, candidateLabels)},
		},
		"temperature": 0.1,
		"max_tokens":  120,
	}

	raw, err := c.doJSON(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, err
	}
	assistant, err := extractAssistantContent(raw)
	if err != nil {
		return nil, err
	}

	var labels []string
	if err := json.Unmarshal([]byte(extractJSONPayload(assistant)), &labels); err != nil {
		return nil, fmt.Errorf("%w: parse labels: %v", ErrInvalidResponse, err)
	}
	return filterLabels(labels, candidateLabels), nil
}

// filterLabels keeps only labels present in the candidate set, matched
// case-insensitively, canonical spelling preserved, at most 3.
func filterLabels(labels []string, candidates []string) []string {
	canonical := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		canonical[strings.ToLower(strings.TrimSpace(candidate))] = candidate
	}
	var result []string
	seen := make(map[string]bool)
	for _, label := range labels {
		key := strings.ToLower(strings.TrimSpace(label))
		name, ok := canonical[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, name)
		if len(result) == 3 {
			break
		}
	}
	return result
}

func (c *Client) doJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, &ServerError{Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("llm request failed, status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

func extractAssistantContent(raw []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrInvalidResponse
	}
	content := resp.Choices[0].Message.Content
	switch v := content.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := m["text"].(string); ok {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			return "", ErrInvalidResponse
		}
		return strings.TrimSpace(strings.Join(parts, "\n")), nil
	default:
		return "", ErrInvalidResponse
	}
}

// extractJSONPayload strips markdown fences and leading prose so a JSON
// value buried in the assistant content still parses.
func extractJSONPayload(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "{}"
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	for _, open := range []byte{'[', '{'} {
		start := strings.IndexByte(trimmed, open)
		if start < 0 {
			continue
		}
		var closing byte = ']'
		if open == '{' {
			closing = '}'
		}
		end := strings.LastIndexByte(trimmed, closing)
		if end > start {
			return trimmed[start : end+1]
		}
		return trimmed[start:]
	}
	return trimmed
}
