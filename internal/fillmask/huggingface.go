package fillmask

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/alnah/go-augment/internal/apierr"
	"github.com/alnah/go-augment/internal/augment"
)

// HuggingFace Inference configuration.
const (
	// DefaultHFBaseURL serves the hosted fill-mask pipeline; the model id is appended.
	DefaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"

	// DefaultHFModel is a Korean ELECTRA generator trained for masked-token prediction.
	DefaultHFModel = "monologg/koelectra-base-v3-generator"

	defaultTopK = 5

	// Model cold starts answer 503 for a while, hence the generous delays.
	defaultHFMaxRetries = 3
	defaultHFBaseDelay  = 2 * time.Second
	defaultHFMaxDelay   = 30 * time.Second

	defaultHFHTTPTimeout = 2 * time.Minute

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 1 << 20
)

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ augment.Model = (*HFClient)(nil)

// HFClient fills masks through a HuggingFace-compatible fill-mask endpoint:
// the hosted Inference API, or a self-hosted server with the same contract.
type HFClient struct {
	model      string
	maskToken  string
	apiKey     string
	baseURL    string
	topK       int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	onRetry    func(int, time.Duration, error)
	httpClient httpDoer
}

// HFOption configures an HFClient.
type HFOption func(*HFClient)

// WithAPIKey sets the bearer token. Optional for self-hosted servers.
func WithAPIKey(key string) HFOption {
	return func(c *HFClient) {
		c.apiKey = key
	}
}

// WithBaseURL sets a custom base URL (self-hosted servers, tests).
func WithBaseURL(url string) HFOption {
	return func(c *HFClient) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTopK sets how many ranked candidates are requested.
func WithTopK(k int) HFOption {
	return func(c *HFClient) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts for transient errors.
func WithMaxRetries(n int) HFOption {
	return func(c *HFClient) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) HFOption {
	return func(c *HFClient) {
		if base > 0 {
			c.baseDelay = base
		}
		if max > 0 {
			c.maxDelay = max
		}
	}
}

// WithOnRetry registers a callback invoked before each retry.
func WithOnRetry(fn func(retry int, delay time.Duration, err error)) HFOption {
	return func(c *HFClient) {
		c.onRetry = fn
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(d httpDoer) HFOption {
	return func(c *HFClient) {
		c.httpClient = d
	}
}

// NewHFClient creates a client for model whose tokenizer uses maskToken.
func NewHFClient(model, maskToken string, opts ...HFOption) (*HFClient, error) {
	if model == "" {
		return nil, ErrEmptyModel
	}
	if maskToken == "" {
		return nil, fmt.Errorf("model %s: %w", model, ErrMaskTokenNotFound)
	}

	c := &HFClient{
		model:      model,
		maskToken:  maskToken,
		baseURL:    DefaultHFBaseURL,
		topK:       defaultTopK,
		maxRetries: defaultHFMaxRetries,
		baseDelay:  defaultHFBaseDelay,
		maxDelay:   defaultHFMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultHFHTTPTimeout}
	}
	return c, nil
}

// MaskToken returns the model's mask token.
func (c *HFClient) MaskToken() string {
	return c.maskToken
}

// FillMask returns the ranked completions for text, best first.
// Transient failures (rate limits, model loading, 5xx) are retried.
func (c *HFClient) FillMask(ctx context.Context, text string) ([]augment.Prediction, error) {
	body, err := json.Marshal(hfRequest{
		Inputs:     text,
		Parameters: hfParameters{TopK: c.topK},
		Options:    hfOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cfg := apierr.RetryConfig{
		MaxRetries: c.maxRetries,
		BaseDelay:  c.baseDelay,
		MaxDelay:   c.maxDelay,
		OnRetry:    c.onRetry,
	}
	return apierr.RetryWithBackoff(ctx, cfg, func() ([]augment.Prediction, error) {
		preds, err := c.callAPI(ctx, body)
		if err != nil {
			return nil, classifyHFError(err)
		}
		if len(preds) == 0 {
			return nil, ErrEmptyReply
		}
		return preds, nil
	}, apierr.IsRetryable)
}

// HuggingFace fill-mask request/response types.

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	TopK int `json:"top_k,omitempty"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfPrediction struct {
	Score    float64 `json:"score"`
	Token    int     `json:"token"`
	TokenStr string  `json:"token_str"`
	Sequence string  `json:"sequence"`
}

// hfErrorResponse is the error envelope. Error is usually a string but
// some deployments send a list of messages.
type hfErrorResponse struct {
	Error         json.RawMessage `json:"error"`
	EstimatedTime float64         `json:"estimated_time"`
}

// hfAPIError is a non-2xx answer from the endpoint.
type hfAPIError struct {
	StatusCode int
	Message    string
}

func (e *hfAPIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HuggingFace API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HuggingFace API error %d", e.StatusCode)
}

// callAPI posts body to the model endpoint and decodes the predictions.
func (c *HFClient) callAPI(ctx context.Context, body []byte) (_ []augment.Prediction, err error) {
	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHFError(resp.StatusCode, respBody)
	}
	return decodePredictions(respBody)
}

// decodePredictions accepts the single-mask shape [{...}] and the
// multi-mask shape [[{...}]], keeping the first mask's candidates.
// Results are sorted by score, best first.
func decodePredictions(body []byte) ([]augment.Prediction, error) {
	var flat []hfPrediction
	if err := json.Unmarshal(body, &flat); err != nil {
		var nested [][]hfPrediction
		if nestedErr := json.Unmarshal(body, &nested); nestedErr != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if len(nested) > 0 {
			flat = nested[0]
		}
	}

	preds := make([]augment.Prediction, 0, len(flat))
	for _, p := range flat {
		preds = append(preds, augment.Prediction{
			Sequence: p.Sequence,
			Token:    strings.TrimSpace(p.TokenStr),
			Score:    p.Score,
		})
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Score > preds[j].Score
	})
	return preds, nil
}

// parseHFError builds an hfAPIError from an error response body.
func parseHFError(statusCode int, body []byte) *hfAPIError {
	var envelope hfErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return &hfAPIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	}

	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err != nil {
		var msgs []string
		if err := json.Unmarshal(envelope.Error, &msgs); err == nil {
			msg = strings.Join(msgs, "; ")
		} else {
			msg = string(envelope.Error)
		}
	}
	if envelope.EstimatedTime > 0 {
		msg = fmt.Sprintf("%s (estimated %.0fs)", msg, envelope.EstimatedTime)
	}
	return &hfAPIError{StatusCode: statusCode, Message: msg}
}

// classifyHFError maps HuggingFace errors to apierr sentinels.
func classifyHFError(err error) error {
	var apiErr *hfAPIError
	if errors.As(err, &apiErr) {
		return apierr.Classify(apiErr.StatusCode, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	return err
}
