// Package segment groups an ordered stream of classified pages into typed
// document segments. Segmentation is strictly sequential over page order:
// classification may run on a worker pool, but segments are only built from
// the in-order results.
package segment

import (
	"fmt"
	"sort"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

// Segmenter folds per-page classifications into document segments. The
// resulting segments always partition the input pages: contiguous ranges,
// no gaps, no overlaps.
type Segmenter struct {
	cfg config.SegmenterConfig
}

// New creates a Segmenter.
func New(cfg config.SegmenterConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// openSegment accumulates pages and a type-vote tally until a boundary is
// found.
type openSegment struct {
	pages []model.PageClassification
	tally map[model.DocumentType]float64
}

func (o *openSegment) add(pc model.PageClassification) {
	o.pages = append(o.pages, pc)
	for _, cand := range pc.Candidates {
		if cand.Type == model.DocTypeUnknown {
			continue
		}
		o.tally[cand.Type] += cand.Confidence
	}
}

// dominant returns the type with the highest accumulated vote, exact ties
// broken by lexicographically smaller type. UNKNOWN when nothing has voted.
func (o *openSegment) dominant() model.DocumentType {
	best := model.DocTypeUnknown
	bestScore := 0.0
	types := make([]model.DocumentType, 0, len(o.tally))
	for t := range o.tally {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		if o.tally[t] > bestScore {
			best = t
			bestScore = o.tally[t]
		}
	}
	return best
}

// Segment builds ordered document segments from ordered page
// classifications. The input must be sorted by page index with no gaps.
func (s *Segmenter) Segment(classifications []model.PageClassification) []model.DocumentSegment {
	var segments []model.DocumentSegment
	var open *openSegment

	flush := func() {
		if open == nil || len(open.pages) == 0 {
			return
		}
		segments = append(segments, s.close(open, len(segments)))
		open = nil
	}

	for _, pc := range classifications {
		top := pc.Top()

		if open == nil {
			if top.Type == model.DocTypeUnknown && !pc.Continuation {
				// Untyped page with no continuation cue: surface it as its
				// own UNKNOWN segment instead of silently attaching it
				// somewhere.
				segments = append(segments, s.unknownSegment(pc, len(segments)))
				continue
			}
			open = &openSegment{tally: make(map[model.DocumentType]float64)}
			open.add(pc)
			continue
		}

		dom := open.dominant()
		matched, conf := s.matchesDominant(pc, dom)

		switch {
		case matched && conf >= s.cfg.ContinuationThreshold:
			open.add(pc)
		case pc.Continuation:
			open.add(pc)
		case top.Type == model.DocTypeUnknown:
			flush()
			segments = append(segments, s.unknownSegment(pc, len(segments)))
		default:
			flush()
			open = &openSegment{tally: make(map[model.DocumentType]float64)}
			open.add(pc)
		}
	}
	flush()

	return segments
}

// matchesDominant decides whether a page's classification agrees with the
// open segment's dominant type. The page counts as matching when the
// dominant type's candidate is within TieEpsilon of the page's top
// candidate — preferring the open segment on near-ties avoids spurious
// splits between related form types.
func (s *Segmenter) matchesDominant(pc model.PageClassification, dom model.DocumentType) (bool, float64) {
	if dom == model.DocTypeUnknown {
		return false, 0
	}
	top := pc.Top()
	if top.Type == dom {
		return true, top.Confidence
	}
	for _, cand := range pc.Candidates {
		if cand.Type == dom && top.Confidence-cand.Confidence <= s.cfg.TieEpsilon {
			return true, cand.Confidence
		}
	}
	return false, 0
}

func (s *Segmenter) close(open *openSegment, ordinal int) model.DocumentSegment {
	dom := open.dominant()

	// Mean of the winning type's confidence across the pages that voted for
	// it. Continuation pages with no vote do not dilute the segment.
	sum, n := 0.0, 0
	for _, pc := range open.pages {
		for _, cand := range pc.Candidates {
			if cand.Type == dom {
				sum += cand.Confidence
				n++
				break
			}
		}
	}
	conf := 0.0
	if n > 0 {
		conf = sum / float64(n)
	}

	seg := model.DocumentSegment{
		ID:             segmentID(ordinal),
		Type:           dom,
		PageStart:      open.pages[0].PageIndex,
		PageEnd:        open.pages[len(open.pages)-1].PageIndex,
		TypeConfidence: conf,
		Status:         model.SegmentPending,
	}
	if conf < s.cfg.MinTypeConfidence {
		seg.LowConfidence = true
	}
	return seg
}

func (s *Segmenter) unknownSegment(pc model.PageClassification, ordinal int) model.DocumentSegment {
	return model.DocumentSegment{
		ID:             segmentID(ordinal),
		Type:           model.DocTypeUnknown,
		PageStart:      pc.PageIndex,
		PageEnd:        pc.PageIndex,
		TypeConfidence: 0,
		LowConfidence:  true,
		Status:         model.SegmentPending,
	}
}

// Segment IDs are ordinal, not random, so identical inputs always produce
// identical reports.
func segmentID(ordinal int) string {
	return fmt.Sprintf("seg-%03d", ordinal+1)
}
