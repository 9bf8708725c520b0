package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/wordmaster/pkg/models"
)

// DefaultTimeout bounds the oracle call; past it the caller proceeds
// with local-only selection
const DefaultTimeout = 12 * time.Second

// Oracle is a client for an OpenAI-compatible chat completions API used
// to rank words for an upcoming test. It is strictly optional: every
// failure path degrades to local selection.
type Oracle struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a new oracle client from environment configuration
func New() (*Oracle, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	apiURL := os.Getenv("OPENAI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	timeout := DefaultTimeout
	if secStr := os.Getenv("ORACLE_TIMEOUT_SECONDS"); secStr != "" {
		if sec, err := strconv.Atoi(secStr); err == nil && sec > 0 {
			timeout = time.Duration(sec) * time.Second
		}
	}

	return &Oracle{
		apiKey:      apiKey,
		apiURL:      apiURL,
		model:       model,
		maxTokens:   300,
		temperature: 0.2,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// RankWords asks the oracle which words to test next, given each word's
// error and recency metadata. Returns the ranked id list; the list may
// be shorter than count.
func (o *Oracle) RankWords(ctx context.Context, words []models.Word, count int) ([]string, error) {
	var summaries strings.Builder
	for _, w := range words {
		lastTested := "never"
		if w.LastTested != nil {
			days := time.Since(time.UnixMilli(*w.LastTested)).Hours() / 24
			lastTested = fmt.Sprintf("%.1f days ago", days)
		}
		fmt.Fprintf(&summaries, "- id=%s word=%q errors=%.1f last_tested=%s\n", w.ID, w.Text, w.ErrorCount, lastTested)
	}

	prompt := fmt.Sprintf(
		"You are choosing the %d most useful words for a learner's next spelling test. "+
			"Prefer words with more errors and longer gaps since the last test.\n\n%s\n"+
			"Respond with ONLY a JSON array of the chosen word ids, best first.",
		count, summaries.String(),
	)

	request := ChatRequest{
		Model:       o.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	return ParseIDList(response.Choices[0].Message.Content)
}

// RankWordsWithFallback ranks words, returning nil on any failure so the
// caller silently falls back to local selection
func (o *Oracle) RankWordsWithFallback(ctx context.Context, words []models.Word, count int) []string {
	ids, err := o.RankWords(ctx, words, count)
	if err != nil {
		log.Printf("Oracle ranking unavailable, using local selection: %v", err)
		return nil
	}
	return ids
}

// idListEnvelope is the object form some providers wrap the ids in
type idListEnvelope struct {
	IDs []string `json:"ids"`
}

// ParseIDList normalizes the two response shapes the oracle is known to
// produce — a bare JSON string array or {"ids": [...]} — optionally
// wrapped in a markdown code fence
func ParseIDList(content string) ([]string, error) {
	content = strings.TrimSpace(content)

	// Strip a ``` or ```json fence if present
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	var ids []string
	if err := json.Unmarshal([]byte(content), &ids); err == nil {
		return ids, nil
	}

	var envelope idListEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err == nil && envelope.IDs != nil {
		return envelope.IDs, nil
	}

	return nil, fmt.Errorf("unrecognized id list shape: %.80s", content)
}
