package deepseek

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

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
)

// FlexString tolerates LLM output that flips between JSON strings,
// numbers and null for the same field.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("deepseek: field is neither string nor number: %s", b)
}

// Item is one extracted discount line, pre-normalization.
type Item struct {
	En           string     `json:"en"`
	Zh           string     `json:"zh"`
	Size         string     `json:"size"`
	SalePrice    string     `json:"salePrice"`
	RegularPrice string     `json:"regularPrice"`
	Unit         string     `json:"unit"`
	Quantity     FlexString `json:"quantity"`
}

// Client calls the chat-completions endpoint with a strict JSON-only
// extraction prompt.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	httpc   *http.Client
	log     zerolog.Logger
}

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		log:     logger,
	}
}

var systemPrompt = strings.Join([]string{
	"You are a strict JSON generator.",
	"Output JSON only. No markdown. No explanation. No comments.",
	"",
	"Rules:",
	`1) Items are separated by numbered markers like "1、 2、 3、".`,
	"2) Ignore banners and department headers.",
	`3) Output objects like {"zh":"","en":"","salePrice":"10.99","regularPrice":"","unit":"ea","size":"","quantity":null}.`,
	"4) If only one price exists, it is salePrice; regularPrice is empty string.",
	`5) Multi-buy prices MUST preserve original format like "2/4.99", "3/9.99". Do NOT rewrite as natural language.`,
	`6) unit must be one of: "lb", "ea", "bag", "order". If missing, use "ea".`,
	`7) size is portion size like "100g", "100mL", "250g", "1L", or "12x355mL". If missing or unclear, output empty string.`,
	`8) If a price implies multiple units, populate "quantity" with the count.`,
	"",
	"Return a JSON array.",
}, "\n")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat any           `json:"response_format"`
	Messages       []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends the raw discount text and returns the extracted items.
// Fails on missing credentials, empty input, transport errors or
// non-JSON output; callers decide whether that is fatal.
func (c *Client) Extract(ctx context.Context, rawText string) ([]Item, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, errors.New("deepseek: empty input")
	}
	if c.apiKey == "" {
		return nil, errors.New("deepseek: missing API key")
	}

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Temperature:    0,
		MaxTokens:      2048,
		ResponseFormat: map[string]string{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "DISCOUNT TEXT:\n" + rawText},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepseek: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("deepseek: status %d: %s", res.StatusCode, text)
	}

	var cr chatResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("deepseek: decode response: %w", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return nil, errors.New("deepseek: empty content")
	}

	content := cr.Choices[0].Message.Content
	if strings.Contains(content, "```") {
		return nil, errors.New("deepseek: non-JSON content")
	}

	items, err := decodeItems(content)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Int("items", len(items)).Msg("deepseek extract")
	return items, nil
}

// decodeItems accepts either a bare array or an {"items": [...]} wrapper.
func decodeItems(content string) ([]Item, error) {
	var arr []Item
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}
	var wrapped struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return nil, errors.New("deepseek: output must be a JSON array")
}
