package fillmask_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/alnah/go-augment/internal/apierr"
	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/fillmask"
	"github.com/alnah/go-augment/internal/lang"
)

// ---------------------------------------------------------------------------
// Helpers - chat completer mock
// ---------------------------------------------------------------------------

type mockCompleter struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	replies  []string
	errs     []error
}

func (m *mockCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return openai.ChatCompletionResponse{}, m.errs[i]
	}
	reply := ""
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
		},
	}, nil
}

var _ fillmask.ChatCompleter = (*mockCompleter)(nil)

func newTestChatClient(cc fillmask.ChatCompleter, opts ...fillmask.ChatOption) *fillmask.ChatClient {
	opts = append([]fillmask.ChatOption{
		fillmask.WithChatCompleter(cc),
		fillmask.WithChatRetryDelays(time.Millisecond, time.Millisecond),
	}, opts...)
	return fillmask.NewChatClient(nil, opts...)
}

// ---------------------------------------------------------------------------
// TestChatClient_FillMask
// ---------------------------------------------------------------------------

func TestChatClient_FillMask(t *testing.T) {
	t.Parallel()

	t.Run("splices reply into the mask", func(t *testing.T) {
		t.Parallel()

		cc := &mockCompleter{replies: []string{"올해"}}
		c := newTestChatClient(cc, fillmask.WithChatModel("llama3.2"))

		preds, err := c.FillMask(context.Background(), "예산 지출은 [MASK] 늘었다")
		if err != nil {
			t.Fatalf("FillMask() unexpected error: %v", err)
		}
		want := augment.Prediction{Sequence: "예산 지출은 올해 늘었다", Token: "올해", Score: 1}
		if len(preds) != 1 || preds[0] != want {
			t.Errorf("FillMask() = %+v, want [%+v]", preds, want)
		}

		req := cc.requests[0]
		if req.Model != "llama3.2" {
			t.Errorf("model = %q, want llama3.2", req.Model)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature = %v, want 0", req.Temperature)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("got %d messages, want 2", len(req.Messages))
		}
		if !strings.Contains(req.Messages[0].Content, "Korean") {
			t.Errorf("system prompt should name the language: %q", req.Messages[0].Content)
		}
		if req.Messages[1].Content != "예산 지출은 [MASK] 늘었다" {
			t.Errorf("user message = %q", req.Messages[1].Content)
		}
	})

	t.Run("language and mask options reach the prompt", func(t *testing.T) {
		t.Parallel()

		cc := &mockCompleter{replies: []string{"budget"}}
		c := newTestChatClient(cc, fillmask.WithLanguage(lang.MustParse("en")), fillmask.WithChatMask("<blank>"))

		if c.MaskToken() != "<blank>" {
			t.Errorf("MaskToken() = %q, want <blank>", c.MaskToken())
		}
		preds, err := c.FillMask(context.Background(), "the <blank> grew")
		if err != nil {
			t.Fatalf("FillMask() unexpected error: %v", err)
		}
		if preds[0].Sequence != "the budget grew" {
			t.Errorf("Sequence = %q", preds[0].Sequence)
		}
		prompt := cc.requests[0].Messages[0].Content
		if !strings.Contains(prompt, "English") || !strings.Contains(prompt, "<blank>") {
			t.Errorf("system prompt = %q, want English and <blank>", prompt)
		}
	})

	t.Run("text without mask is rejected before calling", func(t *testing.T) {
		t.Parallel()

		cc := &mockCompleter{}
		c := newTestChatClient(cc)

		_, err := c.FillMask(context.Background(), "no placeholder")
		if !errors.Is(err, augment.ErrInvalidMaskToken) {
			t.Errorf("FillMask() error = %v, want ErrInvalidMaskToken", err)
		}
		if len(cc.requests) != 0 {
			t.Errorf("got %d requests, want 0", len(cc.requests))
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		t.Parallel()

		cc := &mockCompleter{replies: []string{"  "}}
		c := newTestChatClient(cc)

		_, err := c.FillMask(context.Background(), "a [MASK]")
		if !errors.Is(err, fillmask.ErrEmptyReply) {
			t.Errorf("FillMask() error = %v, want ErrEmptyReply", err)
		}
	})
}

func TestChatClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantErr   error
		wantCalls int
	}{
		{"auth", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, apierr.ErrAuthFailed, 1},
		{"model not found", &openai.APIError{HTTPStatusCode: 404, Message: "model not found"}, apierr.ErrNotFound, 1},
		{"quota", &openai.APIError{HTTPStatusCode: 429, Message: "You exceeded your current quota"}, apierr.ErrQuotaExceeded, 1},
		{"rate limit retried", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, apierr.ErrRateLimit, 3},
		{"server error retried", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, apierr.ErrUnavailable, 3},
		{"deadline", context.DeadlineExceeded, apierr.ErrTimeout, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cc := &mockCompleter{errs: []error{tt.err, tt.err, tt.err}}
			c := newTestChatClient(cc, fillmask.WithChatMaxRetries(2))

			_, err := c.FillMask(context.Background(), "a [MASK]")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FillMask() error = %v, want %v", err, tt.wantErr)
			}
			if len(cc.requests) != tt.wantCalls {
				t.Errorf("got %d calls, want %d", len(cc.requests), tt.wantCalls)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCleanReply
// ---------------------------------------------------------------------------

func TestCleanReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reply string
		want  string
	}{
		{"올해", "올해"},
		{"  올해.  ", "올해"},
		{`"budget"`, "budget"},
		{"“budget”", "budget"},
		{"budget\nbecause it fits", "budget"},
		{"[MASK]", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := fillmask.CleanReply(tt.reply, "[MASK]"); got != tt.want {
			t.Errorf("CleanReply(%q) = %q, want %q", tt.reply, got, tt.want)
		}
	}
}
