package agent

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/mydub-ai/reporter-cli/internal/config"
	"github.com/mydub-ai/reporter-cli/internal/store"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

func newFakeStore() *store.MemoryStore {
	return store.NewMemory()
}

// fakeAI answers judge prompts with a fixed score and everything else with
// a canned article. Responses can be overridden per prompt substring.
type fakeAI struct {
	mu        sync.Mutex
	score     string
	article   string
	overrides map[string]string // prompt substring -> reply
	err       error
	calls     []string
}

func newFakeAI() *fakeAI {
	return &fakeAI{score: "0.8", article: "Dubai article body.", overrides: make(map[string]string)}
}

func (f *fakeAI) ChatCompletion(_ context.Context, req openrouter.ChatCompletionRequest) (*openrouter.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prompt := req.Messages[len(req.Messages)-1].Content
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return nil, f.err
	}

	reply := f.article
	if strings.Contains(prompt, "Respond with only the number") {
		reply = f.score
	}
	for substr, r := range f.overrides {
		if strings.Contains(prompt, substr) {
			reply = r
		}
	}
	return &openrouter.ChatCompletionResponse{
		Model:   req.Model,
		Choices: []openrouter.Choice{{Message: openrouter.Message{Role: "assistant", Content: reply}}},
		Usage:   openrouter.Usage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30},
	}, nil
}

// fakeEdge serves canned payloads per function name.
type fakeEdge struct {
	mu            sync.Mutex
	payloads      map[string]any
	errs          map[string]error
	moderationOK  bool
	moderationErr error
	invocations   []string
}

func newFakeEdge() *fakeEdge {
	return &fakeEdge{
		payloads:     make(map[string]any),
		errs:         make(map[string]error),
		moderationOK: true,
	}
}

func (f *fakeEdge) Invoke(_ context.Context, fn string, _ any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invocations = append(f.invocations, fn)
	if err := f.errs[fn]; err != nil {
		return nil, err
	}
	payload, ok := f.payloads[fn]
	if !ok {
		return json.RawMessage(`{}`), nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (f *fakeEdge) ModerateContent(context.Context, string, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moderationErr != nil {
		return false, f.moderationErr
	}
	return f.moderationOK, nil
}

func testScoring() config.ScoringConfig {
	return config.ScoringConfig{
		RelevanceThreshold: 0.7,
		PriorityThreshold:  0.6,
		QualityThreshold:   0.8,
		RelevanceFloor:     0.3,
		FallbackScore:      0.5,
	}
}

func testModels() config.OpenRouterConfig {
	return config.OpenRouterConfig{
		CreativeModel: "creative-test",
		AnalysisModel: "analysis-test",
	}
}

// longBody returns n repetitions of a Dubai-flavored sentence, enough to
// clear the word-count floor.
func longBody(n int) string {
	return strings.TrimSpace(strings.Repeat("Dubai continues to expand its public infrastructure across the city. ", n))
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}
