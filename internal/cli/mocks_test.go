package cli

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/alnah/go-augment/internal/augment"
	"github.com/alnah/go-augment/internal/config"
	"github.com/alnah/go-augment/internal/interrupt"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock ModelFactory + stub model
// ---------------------------------------------------------------------------

type mockModelFactory struct {
	NewModelFunc func(ctx context.Context, spec ModelSpec) (augment.Model, error)

	mu    sync.Mutex
	specs []ModelSpec
}

func (m *mockModelFactory) NewModel(ctx context.Context, spec ModelSpec) (augment.Model, error) {
	m.mu.Lock()
	m.specs = append(m.specs, spec)
	m.mu.Unlock()

	if m.NewModelFunc != nil {
		return m.NewModelFunc(ctx, spec)
	}
	return &stubModel{}, nil
}

func (m *mockModelFactory) Specs() []ModelSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ModelSpec(nil), m.specs...)
}

// stubModel fills the mask with a fixed word. It never touches the network.
type stubModel struct {
	Mask         string // defaults to "[MASK]"
	Word         string // defaults to "새"
	FillMaskFunc func(ctx context.Context, text string) ([]augment.Prediction, error)

	mu    sync.Mutex
	texts []string
}

func (m *stubModel) MaskToken() string {
	if m.Mask == "" {
		return "[MASK]"
	}
	return m.Mask
}

func (m *stubModel) FillMask(ctx context.Context, text string) ([]augment.Prediction, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.FillMaskFunc != nil {
		return m.FillMaskFunc(ctx, text)
	}
	word := m.Word
	if word == "" {
		word = "새"
	}
	return []augment.Prediction{{
		Sequence: strings.Replace(text, m.MaskToken(), word, 1),
		Token:    word,
		Score:    1,
	}}, nil
}

func (m *stubModel) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// ---------------------------------------------------------------------------
// Mock ProgressFactory + Progress
// ---------------------------------------------------------------------------

type mockProgressFactory struct {
	mu       sync.Mutex
	totals   []int
	progress *mockProgress
}

func (m *mockProgressFactory) NewProgress(_ io.Writer, total int) Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals = append(m.totals, total)
	if m.progress == nil {
		m.progress = &mockProgress{}
	}
	return m.progress
}

func (m *mockProgressFactory) Totals() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.totals...)
}

type mockProgress struct {
	mu      sync.Mutex
	incrs   int
	stopped bool
}

func (m *mockProgress) Incr() {
	m.mu.Lock()
	m.incrs++
	m.mu.Unlock()
}

func (m *mockProgress) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *mockProgress) Incrs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incrs
}

func (m *mockProgress) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// ---------------------------------------------------------------------------
// Mock InterruptFactory + Interrupter
// ---------------------------------------------------------------------------

// mockInterruptFactory hands out a single mockInterrupter.
// ContextFunc lets a test replace the run context, e.g. to simulate abort.
type mockInterruptFactory struct {
	Interrupter *mockInterrupter
	ContextFunc func(parent context.Context) context.Context
}

func (m *mockInterruptFactory) NewInterrupter(ctx context.Context) (Interrupter, context.Context) {
	if m.Interrupter == nil {
		m.Interrupter = newMockInterrupter()
	}
	if m.ContextFunc != nil {
		ctx = m.ContextFunc(ctx)
	}
	return m.Interrupter, ctx
}

type mockInterrupter struct {
	stopping chan struct{}
	Decision interrupt.Behavior

	mu        sync.Mutex
	decisions []string
	stopCalls int
}

func newMockInterrupter() *mockInterrupter {
	return &mockInterrupter{stopping: make(chan struct{})}
}

// Press simulates the first Ctrl+C.
func (m *mockInterrupter) Press() {
	close(m.stopping)
}

func (m *mockInterrupter) Stopping() <-chan struct{} {
	return m.stopping
}

func (m *mockInterrupter) WaitForDecision(message string) interrupt.Behavior {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, message)
	return m.Decision
}

func (m *mockInterrupter) Stop() {
	m.mu.Lock()
	m.stopCalls++
	m.mu.Unlock()
}

func (m *mockInterrupter) DecisionCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.decisions)
}

func (m *mockInterrupter) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

// Compile-time interface checks.
var (
	_ ConfigLoader     = (*mockConfigLoader)(nil)
	_ ModelFactory     = (*mockModelFactory)(nil)
	_ augment.Model    = (*stubModel)(nil)
	_ ProgressFactory  = (*mockProgressFactory)(nil)
	_ Progress         = (*mockProgress)(nil)
	_ InterruptFactory = (*mockInterruptFactory)(nil)
	_ Interrupter      = (*mockInterrupter)(nil)
)
