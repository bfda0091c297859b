package tags

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"teledrive-web/internal/model"
	"teledrive-web/pkg/apierror"
)

const suggestPrompt = "You are an expert at analyzing media content and metadata. " +
	"Suggest up to 5 short lowercase tags that describe the file. " +
	"Respond with a JSON array of strings and nothing else."

// Config carries the settings for the tag suggestion service. An
// empty APIKey disables the client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint to
// suggest tags for an uploaded file. Failures here are always
// isolated by callers: a file upload must never fail because tagging
// did.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type imageURL struct {
	URL string `json:"url"`
}

type chatContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SuggestTags asks the model for tags describing a file. For images a
// data URI of the content is attached so the model can look at the
// pixels; other media types are described by name and type only.
func (c *Client) SuggestTags(ctx context.Context, mediaType string, dataURI string, description string) ([]string, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: tag suggestions are not configured", model.ErrBackendUnavailable)
	}

	content := []chatContent{{
		Type: "text",
		Text: fmt.Sprintf("%s\n\nFile type: %s\nDescription: %s", suggestPrompt, mediaType, description),
	}}
	if dataURI != "" && mediaType == string(model.TypeImage) {
		content = append(content, chatContent{
			Type:     "image_url",
			ImageURL: &imageURL{URL: dataURI},
		})
	}

	payload := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tag request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read tag response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode tag response: %w", err)
	}

	if resp.StatusCode >= 400 {
		detail := ""
		if parsed.Error != nil {
			detail = parsed.Error.Message
		}
		return nil, apierror.FromDetail(detail, resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("tag response had no choices")
	}

	return parseTagList(parsed.Choices[0].Message.Content)
}

// parseTagList extracts the JSON array from a model reply, tolerating
// a markdown code fence around it.
func parseTagList(reply string) ([]string, error) {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		reply = strings.TrimSuffix(reply, "```")
		reply = strings.TrimSpace(reply)
	}

	var tags []string
	if err := json.Unmarshal([]byte(reply), &tags); err != nil {
		return nil, fmt.Errorf("model reply is not a tag array: %w", err)
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out, nil
}
