package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/errors"
)

const (
	DefaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel = "claude-opus-4-5-20251101"

	anthropicVersion = "2023-06-01"
	maxTokens        = 4096
)

const shoppingListPrompt = `Analyze this photo of a book shopping list and identify every book on it.

Steps:
1. Read the title of every book in the image.
2. Ignore books that are crossed out or marked as removed.
3. Use the web_search tool for each book to find:
   - the correct full title
   - the author's full name
   - a purchase link, preferring an online bookstore product page

Reply with JSON only, in this shape:
{
  "books": [
    {"title": "Full title", "author": "Author", "link": "Purchase link"}
  ]
}

Rules:
- Return only the JSON, no other text.
- Search every book to get accurate details.
- Use an empty string for link when none is found.`

// AnthropicClient recognizes books through the Anthropic Messages API with
// the web search tool enabled.
type AnthropicClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewAnthropicClient creates a client. Empty url or model use the defaults.
func NewAnthropicClient(apiKey, baseURL, model string) *AnthropicClient {
	if baseURL == "" {
		baseURL = DefaultAnthropicURL
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClient{
		// Web search turns make a single call slow.
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// RecognizeBooks sends the image and returns the books the model listed.
func (c *AnthropicClient) RecognizeBooks(ctx context.Context, image []byte, mediaType string) ([]Candidate, error) {
	payload := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Tools:     []tool{{Type: "web_search_20250305", Name: "web_search"}},
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: shoppingListPrompt},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream("vision request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Upstream(
			fmt.Sprintf("vision API returned status %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Upstream("decode vision response", err)
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.Upstream("vision API returned no text", nil)
	}

	return ParseCandidates(text.String())
}

// ParseCandidates decodes the model's JSON answer, tolerating markdown code
// fences around it.
func ParseCandidates(text string) ([]Candidate, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var answer struct {
		Books []Candidate `json:"books"`
	}
	if err := json.Unmarshal([]byte(cleaned), &answer); err != nil {
		return nil, errors.Upstream("vision answer is not valid JSON", err).WithDetails(text)
	}
	return answer.Books, nil
}

// Messages API wire types

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Tools     []tool    `json:"tools,omitempty"`
	Messages  []message `json:"messages"`
}

type tool struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
