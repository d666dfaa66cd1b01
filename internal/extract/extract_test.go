package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/resilience"
	"github.com/meridian-legal/docaudit/pkg/extraction"
)

// stubClient scripts per-call outcomes and records the requests it saw.
type stubClient struct {
	mu       sync.Mutex
	method   string
	calls    int
	requests []extraction.Request
	fn       func(call int, req extraction.Request) (*extraction.Response, error)
}

func (s *stubClient) Method() string { return s.method }

func (s *stubClient) Extract(_ context.Context, req extraction.Request) (*extraction.Response, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	resp, err := s.fn(call, req)
	if resp != nil && resp.Method == "" {
		resp.Method = s.method
	}
	return resp, err
}

func respond(fields map[string]extraction.Field) func(int, extraction.Request) (*extraction.Response, error) {
	return func(_ int, _ extraction.Request) (*extraction.Response, error) {
		return &extraction.Response{Fields: fields}, nil
	}
}

func testCfg() config.ExtractorConfig {
	return config.ExtractorConfig{
		MaxAttempts:    3,
		MaxConcurrency: 2,
		MaxChars:       4000,
	}
}

func pendingSegment(id string, typ model.DocumentType, start, end int) model.DocumentSegment {
	return model.DocumentSegment{ID: id, Type: typ, PageStart: start, PageEnd: end, Status: model.SegmentPending}
}

func pages(texts ...string) []model.Page {
	out := make([]model.Page, len(texts))
	for i, t := range texts {
		out[i] = model.Page{Index: i, RawText: t}
	}
	return out
}

func TestRun_ExtractsPendingSegments(t *testing.T) {
	client := &stubClient{method: "claude", fn: respond(map[string]extraction.Field{
		"receipt_number": {Value: "WAC2190012345", Confidence: 0.95},
	})}
	e := New(testCfg(), client, nil)

	segs := e.Run(context.Background(), []model.DocumentSegment{
		pendingSegment("seg-001", model.DocTypeI797, 0, 0),
	}, pages("notice text"))

	require.Len(t, segs, 1)
	assert.Equal(t, model.SegmentExtracted, segs[0].Status)
	assert.Equal(t, "WAC2190012345", segs[0].Fields["receipt_number"].Value)
	assert.Equal(t, "claude", segs[0].Fields["receipt_number"].Method)
}

func TestRun_RetriesTransientThenSucceeds(t *testing.T) {
	client := &stubClient{method: "claude", fn: func(call int, _ extraction.Request) (*extraction.Response, error) {
		if call < 3 {
			return nil, resilience.NewTransientError(errors.New("rate limited"), 429)
		}
		return &extraction.Response{Fields: map[string]extraction.Field{"a": {Value: "x", Confidence: 0.8}}, Method: "claude"}, nil
	}}
	cfg := testCfg()
	e := New(cfg, client, nil)
	e.retry.Sleep = func(_ context.Context, _ time.Duration) error { return nil }

	segs := e.Run(context.Background(), []model.DocumentSegment{
		pendingSegment("seg-001", model.DocTypeI797, 0, 0),
	}, pages("text"))

	assert.Equal(t, model.SegmentExtracted, segs[0].Status)
	assert.Equal(t, 3, client.calls)
}

func TestRun_ExhaustedRetriesFailSegmentOnly(t *testing.T) {
	client := &stubClient{method: "claude", fn: func(call int, req extraction.Request) (*extraction.Response, error) {
		if req.DocumentType == model.DocTypeI94 {
			return nil, resilience.NewTransientError(errors.New("overloaded"), 529)
		}
		return &extraction.Response{Fields: map[string]extraction.Field{"a": {Value: "x", Confidence: 0.9}}, Method: "claude"}, nil
	}}
	e := New(testCfg(), client, nil)
	e.retry.Sleep = func(_ context.Context, _ time.Duration) error { return nil }

	segs := e.Run(context.Background(), []model.DocumentSegment{
		pendingSegment("seg-001", model.DocTypeI94, 0, 0),
		pendingSegment("seg-002", model.DocTypeI797, 1, 1),
	}, pages("i94 text", "notice text"))

	assert.Equal(t, model.SegmentFailedExtraction, segs[0].Status)
	assert.Nil(t, segs[0].Fields)
	assert.Equal(t, model.SegmentExtracted, segs[1].Status)
}

func TestRun_PermanentErrorDoesNotRetry(t *testing.T) {
	client := &stubClient{method: "claude", fn: func(_ int, _ extraction.Request) (*extraction.Response, error) {
		return nil, resilience.NewPermanentError(errors.New("bad json"))
	}}
	e := New(testCfg(), client, nil)

	segs := e.Run(context.Background(), []model.DocumentSegment{
		pendingSegment("seg-001", model.DocTypeI797, 0, 0),
	}, pages("text"))

	assert.Equal(t, model.SegmentFailedExtraction, segs[0].Status)
	assert.Equal(t, 1, client.calls)
}

func TestRun_FallbackMergesByConfidence(t *testing.T) {
	primary := &stubClient{method: "claude", fn: respond(map[string]extraction.Field{
		"shared":       {Value: "primary-wins", Confidence: 0.9},
		"tied":         {Value: "primary-tie", Confidence: 0.8},
		"primary_only": {Value: "p", Confidence: 0.7},
	})}
	fallback := &stubClient{method: "ocr", fn: respond(map[string]extraction.Field{
		"shared":        {Value: "fallback-loses", Confidence: 0.6},
		"tied":          {Value: "fallback-tie", Confidence: 0.8},
		"fallback_only": {Value: "f", Confidence: 0.5},
	})}
	e := New(testCfg(), primary, fallback)

	segs := e.Run(context.Background(), []model.DocumentSegment{
		pendingSegment("seg-001", model.DocTypeI797, 0, 0),
	}, pages("text"))

	fields := segs[0].Fields
	assert.Equal(t, "primary-wins", fields["shared"].Value)
	assert.Equal(t, "primary-tie", fields["tied"].Value)
	assert.Equal(t, "p", fields["primary_only"].Value)
	assert.Equal(t, "f", fields["fallback_only"].Value)
	assert.Equal(t, "ocr", fields["fallback_only"].Method)
}

func TestRun_FallbackCoversPrimaryFailure(t *testing.T) {
	primary := &stubClient{method: "claude", fn: func(_ int, _ extraction.Request) (*extraction.Response, error) {
		return nil, resilience.NewPermanentError(errors.New("refused"))
	}}
	fallback := &stubClient{method: "ocr", fn: respond(map[string]extraction.Field{
		"a": {Value: "rescued", Confidence: 0.6},
	})}
	e := New(testCfg(), primary, fallback)

	segs := e.Run(context.Background(), []model.DocumentSegment{
		pendingSegment("seg-001", model.DocTypeI797, 0, 0),
	}, pages("text"))

	assert.Equal(t, model.SegmentExtracted, segs[0].Status)
	assert.Equal(t, "rescued", segs[0].Fields["a"].Value)
}

func TestRun_SkipsNonPendingSegments(t *testing.T) {
	client := &stubClient{method: "claude", fn: respond(nil)}
	e := New(testCfg(), client, nil)

	done := model.DocumentSegment{ID: "seg-001", Type: model.DocTypeI797, Status: model.SegmentExtracted}
	segs := e.Run(context.Background(), []model.DocumentSegment{done}, pages("text"))

	assert.Equal(t, 0, client.calls)
	assert.Equal(t, model.SegmentExtracted, segs[0].Status)
}

func TestBuildRequest_PageRangeAndBudget(t *testing.T) {
	cfg := testCfg()
	cfg.MaxChars = 10
	e := New(cfg, &stubClient{method: "claude", fn: respond(nil)}, nil)

	seg := pendingSegment("seg-001", model.DocTypeI797, 1, 2)
	req := e.buildRequest(&seg, pages("page zero", strings.Repeat("a", 8), strings.Repeat("b", 8)))

	require.Len(t, req.PageTexts, 2)
	assert.Equal(t, strings.Repeat("a", 8), req.PageTexts[0])
	assert.Equal(t, "bb", req.PageTexts[1])
	assert.NotEmpty(t, req.PromptTemplate)
}

func TestBuildRequest_ExhaustedBudgetBlanksLaterPages(t *testing.T) {
	cfg := testCfg()
	cfg.MaxChars = 10
	e := New(cfg, &stubClient{method: "claude", fn: respond(nil)}, nil)

	// The first page consumes the budget exactly; the rest must not leak
	// through untruncated.
	seg := pendingSegment("seg-001", model.DocTypeI797, 0, 2)
	req := e.buildRequest(&seg, pages(strings.Repeat("a", 10), strings.Repeat("b", 500), "tail"))

	require.Len(t, req.PageTexts, 3)
	assert.Equal(t, strings.Repeat("a", 10), req.PageTexts[0])
	assert.Empty(t, req.PageTexts[1])
	assert.Empty(t, req.PageTexts[2])
}

func TestBuildRequest_ZeroMaxCharsMeansUnlimited(t *testing.T) {
	cfg := testCfg()
	cfg.MaxChars = 0
	e := New(cfg, &stubClient{method: "claude", fn: respond(nil)}, nil)

	seg := pendingSegment("seg-001", model.DocTypeI797, 0, 1)
	req := e.buildRequest(&seg, pages(strings.Repeat("a", 300), strings.Repeat("b", 300)))

	require.Len(t, req.PageTexts, 2)
	assert.Len(t, req.PageTexts[0], 300)
	assert.Len(t, req.PageTexts[1], 300)
}
