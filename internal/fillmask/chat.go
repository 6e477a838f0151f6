package fillmask

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/alnah/go-augment/internal/apierr"
	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/lang"
)

// Chat scorer configuration.
const (
	// DefaultChatMask is the placeholder chat scorers are prompted with.
	DefaultChatMask = "[MASK]"

	// DefaultOpenAIModel is used for the OpenAI provider.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultOllamaModel is used for the Ollama provider.
	DefaultOllamaModel = "llama3.2"

	// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
	DefaultOllamaBaseURL = "http://localhost:11434/v1"

	defaultChatMaxRetries = 3
	defaultChatBaseDelay  = 1 * time.Second
	defaultChatMaxDelay   = 30 * time.Second

	// A single word never needs more.
	defaultChatMaxTokens = 16
)

const chatSystemPrompt = `You fill in masked words in %[1]s sentences.
The user sends one sentence in which the placeholder %[2]s appears exactly once.
Reply with the single %[1]s word that most plausibly takes its place.
Reply with that word only: no quotes, no explanation, no repetition of the sentence.`

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var (
	_ chatCompleter = (*openai.Client)(nil)
	_ augment.Model = (*ChatClient)(nil)
)

// ChatClient fills masks by asking a chat model for the missing word.
// It serves OpenAI and any OpenAI-compatible server such as Ollama.
// Each reply yields exactly one prediction.
type ChatClient struct {
	client     chatCompleter
	model      string
	mask       string
	language   lang.Language
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	onRetry    func(int, time.Duration, error)
}

// ChatOption configures a ChatClient.
type ChatOption func(*ChatClient)

// WithChatModel sets the chat model.
func WithChatModel(model string) ChatOption {
	return func(c *ChatClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithChatMask sets the placeholder used in prompts.
func WithChatMask(mask string) ChatOption {
	return func(c *ChatClient) {
		if mask != "" {
			c.mask = mask
		}
	}
}

// WithLanguage sets the language replies must be in.
func WithLanguage(l lang.Language) ChatOption {
	return func(c *ChatClient) {
		c.language = l
	}
}

// WithChatMaxRetries sets the maximum number of retry attempts for transient errors.
func WithChatMaxRetries(n int) ChatOption {
	return func(c *ChatClient) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithChatRetryDelays sets the base and max delays for exponential backoff.
func WithChatRetryDelays(base, max time.Duration) ChatOption {
	return func(c *ChatClient) {
		if base > 0 {
			c.baseDelay = base
		}
		if max > 0 {
			c.maxDelay = max
		}
	}
}

// WithChatOnRetry registers a callback invoked before each retry.
func WithChatOnRetry(fn func(retry int, delay time.Duration, err error)) ChatOption {
	return func(c *ChatClient) {
		c.onRetry = fn
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) ChatOption {
	return func(c *ChatClient) {
		c.client = cc
	}
}

// NewChatClient creates a ChatClient on top of client.
func NewChatClient(client *openai.Client, opts ...ChatOption) *ChatClient {
	c := &ChatClient{
		client:     client,
		model:      DefaultOpenAIModel,
		mask:       DefaultChatMask,
		language:   lang.Default(),
		maxRetries: defaultChatMaxRetries,
		baseDelay:  defaultChatBaseDelay,
		maxDelay:   defaultChatMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaskToken returns the placeholder chat prompts use.
func (c *ChatClient) MaskToken() string {
	return c.mask
}

// FillMask asks the chat model for the masked word and splices it into text.
func (c *ChatClient) FillMask(ctx context.Context, text string) ([]augment.Prediction, error) {
	if !strings.Contains(text, c.mask) {
		return nil, fmt.Errorf("text has no %s placeholder: %w", c.mask, augment.ErrInvalidMaskToken)
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: defaultChatMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(chatSystemPrompt, c.language.OrDefault().DisplayName(), c.mask),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0,
	}

	cfg := apierr.RetryConfig{
		MaxRetries: c.maxRetries,
		BaseDelay:  c.baseDelay,
		MaxDelay:   c.maxDelay,
		OnRetry:    c.onRetry,
	}
	word, err := apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyChatError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyReply
		}
		word := cleanReply(resp.Choices[0].Message.Content, c.mask)
		if word == "" {
			return "", ErrEmptyReply
		}
		return word, nil
	}, apierr.IsRetryable)
	if err != nil {
		return nil, err
	}

	return []augment.Prediction{{
		Sequence: strings.Replace(text, c.mask, word, 1),
		Token:    word,
		Score:    1,
	}}, nil
}

// cleanReply extracts the word from a chat reply: first line, without
// surrounding quotes or punctuation. A reply that echoes the mask is empty.
func cleanReply(reply, mask string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	word := strings.Trim(strings.TrimSpace(line), "\"'`“”‘’.,;:!?「」")
	if strings.Contains(word, mask) {
		return ""
	}
	return word
}

// classifyChatError maps go-openai errors to apierr sentinels.
func classifyChatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.Classify(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apierr.Classify(reqErr.HTTPStatusCode, reqErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	return err
}
