// Package pipeline wires the audit stages together: page classification,
// segmentation, field extraction, validation, person resolution, timeline
// analysis, and report generation. Stage boundaries are strict: each stage
// consumes the previous stage's completed output and no stage reaches back.
package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-legal/docaudit/internal/classify"
	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/extract"
	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/report"
	"github.com/meridian-legal/docaudit/internal/resolve"
	"github.com/meridian-legal/docaudit/internal/segment"
	"github.com/meridian-legal/docaudit/internal/timeline"
	"github.com/meridian-legal/docaudit/internal/validate"
	"github.com/meridian-legal/docaudit/pkg/extraction"
)

// Pipeline runs a complete audit over an ordered page sequence.
type Pipeline struct {
	cfg        *config.Config
	classifier *classify.Classifier
	segmenter  *segment.Segmenter
	extractor  *extract.Extractor
	generator  *report.Generator

	now      func() time.Time
	newRunID func() string
}

// Option customizes pipeline construction. The defaults use the wall clock
// and random run IDs; tests inject fixed values for determinism.
type Option func(*Pipeline)

// WithNow fixes the validator's reference time.
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID fixes run ID generation.
func WithRunID(gen func() string) Option {
	return func(p *Pipeline) { p.newRunID = gen }
}

// New builds a Pipeline from configuration and the extraction clients.
// fallback may be nil.
func New(cfg *config.Config, primary, fallback extraction.Client, opts ...Option) (*Pipeline, error) {
	classifier, err := classify.New(cfg.Classifier)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build classifier")
	}

	p := &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		segmenter:  segment.New(cfg.Segmenter),
		extractor:  extract.New(cfg.Extractor, primary, fallback),
		generator:  report.New(cfg.Report, cfg.Cases),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run audits the page sequence and returns the report. The only fatal
// condition is an empty input; everything else degrades into segment
// failures and validation issues inside the report. Cancellation mid-run
// yields a partial report with the completed stages filled in, not an error.
func (p *Pipeline) Run(ctx context.Context, pages []model.Page, caseType string) (*model.AuditReport, error) {
	if len(pages) == 0 {
		return nil, eris.Wrap(model.ErrInvalidInput, "pipeline: no pages to audit")
	}

	rep := &model.AuditReport{
		RunID:     p.newRunID(),
		CaseType:  caseType,
		PageCount: len(pages),
	}
	log := zap.L().With(zap.String("run_id", rep.RunID))
	log.Info("pipeline: starting audit",
		zap.Int("pages", len(pages)),
		zap.String("case_type", caseType),
	)

	classifications := p.classifyPages(ctx, pages)
	segments := p.segmenter.Segment(classifications)
	log.Info("pipeline: segmented", zap.Int("segments", len(segments)))

	segments = p.extractor.Run(ctx, segments, pages)
	rep.Segments = segments
	if ctx.Err() != nil {
		// Report what was decided before cancellation. Segments still
		// pending show the run stopped early.
		rep.Partial = true
	}

	validator := validate.New(p.now())
	for i := range rep.Segments {
		issues := validator.Segment(&rep.Segments[i])
		rep.Segments[i].Issues = append(rep.Segments[i].Issues, issues...)
		rep.Issues = append(rep.Issues, issues...)
	}

	resolution := resolve.Resolve(rep.Segments)
	rep.Persons = resolution.Persons
	rep.Issues = append(rep.Issues, resolution.Issues...)

	rep.Issues = append(rep.Issues, validator.CrossDocument(rep.Persons, rep.Segments)...)

	events, timelineIssues := timeline.New(p.cfg.Timeline).Build(rep.Persons, rep.Segments)
	rep.Timeline = events
	rep.Issues = append(rep.Issues, timelineIssues...)

	report.SortIssues(rep.Issues)
	p.generator.Finalize(rep)

	return rep, nil
}

// classifyPages runs the pure per-page classifier on a worker pool. Results
// land in a slice indexed by position, so output order is input order no
// matter how the workers interleave.
func (p *Pipeline) classifyPages(ctx context.Context, pages []model.Page) []model.PageClassification {
	classifications := make([]model.PageClassification, len(pages))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range pages {
		g.Go(func() error {
			classifications[i] = p.classifier.Classify(pages[i].Index, pages[i].RawText)
			return nil
		})
	}
	_ = g.Wait()

	return classifications
}
