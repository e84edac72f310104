package provider

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

	"tabtime/internal/config"
	"tabtime/internal/model"
	"tabtime/internal/tracker"
)

// Defaults for an OpenAI-compatible chat-completions endpoint.
const (
	DefaultEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 150
	DefaultTimeout     = 30 * time.Second
)

const systemPrompt = "You are a productivity analyzer. Your task is to determine if a browsing activity " +
	"is productive or a waste of time based on the URL, title, and content snippet provided."

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Credentials supplies the API key at call time so key changes apply
// without rebuilding the client.
type Credentials interface {
	APIKey(ctx context.Context) (string, error)
}

// Options configures a Client. Zero values take the defaults above; a nil
// Temperature takes DefaultTemperature.
type Options struct {
	Endpoint     string
	Model        string
	Temperature  *float64
	MaxTokens    int
	Timeout      time.Duration
	Organization string
	Project      string
	HTTPClient   *http.Client
}

// OptionsFromConfig maps the [provider] config section to Options.
func OptionsFromConfig(cfg config.ProviderConfig) Options {
	return Options{
		Endpoint:     cfg.Endpoint,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		Organization: cfg.Organization,
		Project:      cfg.Project,
	}
}

// Client classifies activity through a chat-completions API.
type Client struct {
	creds Credentials
	opts  Options
	http  *http.Client
}

var _ tracker.Classifier = (*Client)(nil)

// New creates a Client.
func New(creds Credentials, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == nil {
		t := DefaultTemperature
		opts.Temperature = &t
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{creds: creds, opts: opts, http: hc}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Classify sends one classification request. Any failure is returned as *Error.
func (c *Client) Classify(ctx context.Context, req tracker.ClassificationRequest) (model.Judgment, error) {
	key, err := c.creds.APIKey(ctx)
	if err != nil {
		return model.Judgment{}, &Error{Op: "credential", Err: err}
	}
	if key == "" {
		return model.Judgment{}, &Error{Op: "credential", Err: ErrMissingCredential}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: UserPrompt(req)},
		},
		Temperature: *c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return model.Judgment{}, &Error{Op: "request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Judgment{}, &Error{Op: "request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)
	if c.opts.Organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.opts.Organization)
	}
	if c.opts.Project != "" {
		httpReq.Header.Set("OpenAI-Project", c.opts.Project)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.Judgment{}, &Error{Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.Judgment{}, &Error{Op: "response", StatusCode: resp.StatusCode, Err: readAPIError(resp.Body)}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return model.Judgment{}, &Error{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	if len(cr.Choices) == 0 {
		return model.Judgment{}, &Error{Op: "decode", StatusCode: resp.StatusCode,
			Err: fmt.Errorf("%w: no choices", ErrMalformedResponse)}
	}

	j, err := ParseJudgment(cr.Choices[0].Message.Content)
	if err != nil {
		return model.Judgment{}, &Error{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	return j.Clamped(), nil
}

// UserPrompt renders the classification question for req.
func UserPrompt(req tracker.ClassificationRequest) string {
	return fmt.Sprintf(`Analyze if this browsing activity is productive or a waste of time.
URL: %s
Title: %s
Time spent: %d seconds
Page Content Snippet: %s

Please classify this activity as either "productive" or "waste of time" and provide a confidence score between 0 and 1.
Format your response as JSON: {"isProductive": boolean, "confidence": number, "reason": string}`,
		req.URL, req.Title, req.DurationSeconds, req.Snippet)
}

// ParseJudgment decodes the model's JSON answer. A surrounding markdown
// code fence is tolerated.
func ParseJudgment(content string) (model.Judgment, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var raw struct {
		IsProductive *bool    `json:"isProductive"`
		Confidence   *float64 `json:"confidence"`
		Reason       string   `json:"reason"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return model.Judgment{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.IsProductive == nil || raw.Confidence == nil {
		return model.Judgment{}, fmt.Errorf("%w: missing isProductive or confidence", ErrMalformedResponse)
	}
	return model.Judgment{IsProductive: *raw.IsProductive, Confidence: *raw.Confidence, Reason: raw.Reason}, nil
}

func readAPIError(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return err
	}
	var ae apiError
	if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
		return errors.New(ae.Error.Message)
	}
	if len(data) == 0 {
		return errors.New("unknown error")
	}
	return errors.New(strings.TrimSpace(string(data)))
}
