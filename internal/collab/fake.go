package collab

import (
	"context"
	"fmt"
	"sync"
)

// FakeAnalyzer returns deterministic analysis text for offline runs and
// tests. Err, when set, is returned instead.
type FakeAnalyzer struct {
	mu    sync.Mutex
	Text  string
	Err   error
	calls []AnalyzeRequest
}

func NewFakeAnalyzer(text string) *FakeAnalyzer {
	if text == "" {
		text = "Object: A-frame step ladder. Six steps, aluminum tube frame, rigid hinge."
	}
	return &FakeAnalyzer{Text: text}
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	text, err := f.Text, f.Err
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return AnalyzeResponse{}, err
	}
	if err != nil {
		return AnalyzeResponse{}, err
	}
	return AnalyzeResponse{Text: text}, nil
}

// Calls returns a copy of every request seen so far.
func (f *FakeAnalyzer) Calls() []AnalyzeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AnalyzeRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

// FakeGenerator renders a placeholder inline image per call. Err, when set,
// is returned instead. Block, when non-nil, is received from before each
// call completes so tests can hold a generation in flight.
type FakeGenerator struct {
	mu    sync.Mutex
	Err   error
	Block chan struct{}
	n     int
	calls []GenerateRequest
}

func NewFakeGenerator() *FakeGenerator { return &FakeGenerator{} }

func (f *FakeGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.n++
	n, err, block := f.n, f.Err, f.Block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return GenerateResponse{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return GenerateResponse{}, err
	}
	if err != nil {
		return GenerateResponse{}, err
	}
	return GenerateResponse{ImageURL: fmt.Sprintf("data:image/png;base64,render-%d", n)}, nil
}

// Calls returns a copy of every request seen so far.
func (f *FakeGenerator) Calls() []GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]GenerateRequest, len(f.calls))
	copy(out, f.calls)
	return out
}
