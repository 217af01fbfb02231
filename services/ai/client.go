package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
)

var ErrNotConfigured = errors.New("AI API key not configured")

// Client calls an OpenAI compatible Responses API with structured (json_schema) outputs.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
	logger     core.Logger
	sleep      func(time.Duration)
}

func NewClient(logger core.Logger, conf *core.Config) *Client {
	return &Client{
		baseURL:    conf.AI.BaseURL,
		apiKey:     conf.AI.APIKey,
		model:      conf.AI.Model,
		maxRetries: conf.AI.MaxRetries,
		httpClient: &http.Client{Timeout: conf.AI.Timeout},
		logger:     logger,
		sleep:      time.Sleep,
	}
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("ai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func isRetryableErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

// jitter returns d +/- 20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.2
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}

func (c *Client) doOnce(ctx context.Context, path string, body interface{}) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, errors.Wrap(err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return resp, nil, errors.Wrap(err, "reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do posts body to path and decodes the response in out, retrying transient failures with exponential backoff.
func (c *Client) do(ctx context.Context, path string, body, out interface{}) error {
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			return errors.Wrap(json.Unmarshal(raw, out), "decoding response")
		}
		if !isRetryableErr(err) || attempt >= c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			if secs, perr := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); perr == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitter(sleepFor)

		c.logger.Warn("AI request retrying", err, map[string]interface{}{
			"path":    path,
			"attempt": attempt + 1,
			"sleep":   sleepFor.String(),
		})
		c.sleep(sleepFor)
		backoff *= 2
	}
}

type (
	message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	responsesRequest struct {
		Model string    `json:"model"`
		Input []message `json:"input"`
		Text  struct {
			Format map[string]interface{} `json:"format"`
		} `json:"text"`
		Temperature float64 `json:"temperature,omitempty"`
	}

	responsesResponse struct {
		Output []struct {
			Type    string `json:"type"`
			Role    string `json:"role,omitempty"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text,omitempty"`
			} `json:"content,omitempty"`
		} `json:"output"`
		Refusal string `json:"refusal,omitempty"`
	}
)

func (resp responsesResponse) outputText() string {
	var sb strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				sb.WriteString(content.Text)
			}
		}
	}
	return sb.String()
}

// generateJSON asks the model for a JSON document matching schema and decodes it in out.
func (c *Client) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]interface{}, out interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	req := responsesRequest{
		Model:       c.model,
		Input:       []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: 0.2,
	}
	req.Text.Format = map[string]interface{}{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, "/v1/responses", req, &resp); err != nil {
		return err
	}
	if resp.Refusal != "" {
		return errors.Errorf("model refused: %s", resp.Refusal)
	}
	text := resp.outputText()
	if text == "" {
		return errors.New("no output_text in response")
	}
	return errors.Wrapf(json.Unmarshal([]byte(text), out), "parsing %s", schemaName)
}
