// Package extract runs the field-extraction stage: one collaborator call per
// document segment, concurrently up to a bounded limit, with rate limiting,
// per-call timeouts, and retry on transient failures. A segment whose
// extraction fails is marked failed_extraction and the batch continues — no
// single segment can abort a run.
package extract

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/resilience"
	"github.com/meridian-legal/docaudit/pkg/extraction"
)

// Extractor drives the extraction collaborator for a batch of segments.
type Extractor struct {
	cfg      config.ExtractorConfig
	primary  extraction.Client
	fallback extraction.Client // optional second method
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
}

// New creates an Extractor. fallback may be nil; with a fallback configured
// both methods run per segment and results merge field by field.
func New(cfg config.ExtractorConfig, primary, fallback extraction.Client) *Extractor {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(cfg.RatePerMinute / 60.0)
	}
	return &Extractor{
		cfg:      cfg,
		primary:  primary,
		fallback: fallback,
		limiter:  rate.NewLimiter(limit, 1),
		retry: resilience.RetryConfig{
			MaxAttempts: cfg.MaxAttempts,
			ShouldRetry: shouldRetry,
			OnRetry:     resilience.RetryLogger("extract"),
		},
	}
}

// Run extracts fields for every pending segment. Results are collected per
// worker and applied to the shared segment slice only after all workers have
// finished; workers never mutate shared state.
func (e *Extractor) Run(ctx context.Context, segments []model.DocumentSegment, pages []model.Page) []model.DocumentSegment {
	type outcome struct {
		fields map[string]model.FieldValue
		failed bool
		done   bool
	}
	outcomes := make([]outcome, len(segments))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)

	for i := range segments {
		if segments[i].Status != model.SegmentPending {
			continue
		}
		g.Go(func() error {
			fields, err := e.extractSegment(gCtx, &segments[i], pages)
			if gCtx.Err() != nil && fields == nil {
				// Cancelled mid-flight: leave the segment pending so the
				// partial report shows it was never decided.
				return nil
			}
			if err != nil {
				zap.L().Warn("extract: segment failed",
					zap.String("segment", segments[i].ID),
					zap.String("type", string(segments[i].Type)),
					zap.Error(err),
				)
				outcomes[i] = outcome{failed: true, done: true}
				return nil
			}
			outcomes[i] = outcome{fields: fields, done: true}
			return nil
		})
	}
	_ = g.Wait()

	// Synchronization point: apply outcomes in order.
	for i := range segments {
		if !outcomes[i].done {
			continue
		}
		if outcomes[i].failed {
			segments[i].Status = model.SegmentFailedExtraction
			segments[i].Fields = nil
			continue
		}
		segments[i].Status = model.SegmentExtracted
		segments[i].Fields = outcomes[i].fields
	}
	return segments
}

// extractSegment runs every configured method for one segment and merges the
// results. It fails only when all methods fail.
func (e *Extractor) extractSegment(ctx context.Context, seg *model.DocumentSegment, pages []model.Page) (map[string]model.FieldValue, error) {
	req := e.buildRequest(seg, pages)

	primResp, primErr := e.callMethod(ctx, e.primary, req)

	var fbResp *extraction.Response
	if e.fallback != nil {
		var fbErr error
		fbResp, fbErr = e.callMethod(ctx, e.fallback, req)
		if fbErr != nil {
			zap.L().Debug("extract: fallback method failed",
				zap.String("segment", seg.ID),
				zap.Error(fbErr),
			)
		}
	}

	if primResp == nil && fbResp == nil {
		return nil, primErr
	}
	return mergeResponses(primResp, fbResp), nil
}

// callMethod performs one rate-limited, retried, timeout-bounded collaborator
// call. Each attempt is independent: no partial results carry across retries.
func (e *Extractor) callMethod(ctx context.Context, client extraction.Client, req extraction.Request) (*extraction.Response, error) {
	return resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*extraction.Response, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		callCtx := ctx
		if e.cfg.TimeoutSecs > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.TimeoutSecs)*time.Second)
			defer cancel()
		}
		return client.Extract(callCtx, req)
	})
}

// shouldRetry treats per-call timeouts as transient on top of the standard
// classification. The run-level context being cancelled is handled by the
// retry loop itself.
func shouldRetry(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || resilience.IsTransient(err)
}

func (e *Extractor) buildRequest(seg *model.DocumentSegment, pages []model.Page) extraction.Request {
	req := extraction.Request{
		DocumentType:   seg.Type,
		PromptTemplate: extraction.PromptFor(seg.Type),
	}
	budget := e.cfg.MaxChars
	limited := budget > 0
	for _, p := range pages {
		if !seg.ContainsPage(p.Index) {
			continue
		}
		text := p.RawText
		if limited {
			// An exhausted budget still blanks later pages; their slots stay
			// so page indexes keep lining up with image refs.
			if budget <= 0 {
				text = ""
			} else if len(text) > budget {
				text = text[:budget]
			}
			budget -= len(text)
		}
		req.PageTexts = append(req.PageTexts, text)
		req.PageImageRefs = append(req.PageImageRefs, p.ImageRef)
	}
	return req
}

// mergeResponses combines two methods' fields, keeping the value with the
// higher reported confidence per field. On equal confidence the primary
// method wins. The kept confidence is the kept value's own.
func mergeResponses(primary, fallback *extraction.Response) map[string]model.FieldValue {
	merged := make(map[string]model.FieldValue)
	if primary != nil {
		for name, f := range primary.Fields {
			merged[name] = model.FieldValue{Value: f.Value, Confidence: f.Confidence, Method: primary.Method}
		}
	}
	if fallback != nil {
		for name, f := range fallback.Fields {
			if existing, ok := merged[name]; ok && existing.Confidence >= f.Confidence {
				continue
			}
			merged[name] = model.FieldValue{Value: f.Value, Confidence: f.Confidence, Method: fallback.Method}
		}
	}
	return merged
}
