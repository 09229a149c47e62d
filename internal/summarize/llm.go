package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/glintlabs/glint/internal/post"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultMaxTokens = 400
	defaultMaxPosts  = 200
	httpTimeout      = 60 * time.Second

	systemPrompt = "You are writing the overview section of a daily briefing assembled " +
		"from several platforms. Summarize the posts below into a few short paragraphs: " +
		"lead with the most consequential items, group related ones, note which " +
		"platform each came from. Plain prose, no headings."
)

// Options configures the chat-completions client. APIKey and Model are
// required; everything else has defaults.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string // any OpenAI-compatible endpoint
	MaxTokens int
}

// Client summarizes posts through a chat-completions endpoint.
type Client struct {
	opts   Options
	client *http.Client
}

func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("summarize: api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("summarize: model is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: httpTimeout},
	}, nil
}

func (c *Client) Summarize(ctx context.Context, posts []post.Post) (string, Usage, error) {
	if len(posts) == 0 {
		return "", Usage{}, nil
	}

	reqBody := chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(posts, defaultMaxPosts)},
		},
		MaxTokens: c.opts.MaxTokens,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", Usage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", Usage{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", Usage{}, errors.New("empty choices in response")
	}

	usage := Usage{
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), usage, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}
