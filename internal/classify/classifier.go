// Package classify assigns candidate document types to individual pages of
// a scanned case file. Classification is a pure function of the page text
// against a weighted pattern table; it holds no shared state and never fails,
// degrading to UNKNOWN on empty or garbled input.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

// shortPageChars is the length below which a page is assumed to be a
// continuation of the previous document (tail pages, signature pages).
const shortPageChars = 200

type rule struct {
	re     *regexp.Regexp
	weight float64
}

// Classifier scores pages against a compiled per-type rule table.
type Classifier struct {
	rules map[model.DocumentType][]rule
}

var (
	continuationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)page \d+ of \d+`),
		regexp.MustCompile(`(?i)page \d+`),
		regexp.MustCompile(`(?i)\bcontinued\b`),
		regexp.MustCompile(`(?i)\(continued\)`),
		regexp.MustCompile(`(?i)\battachment\b`),
		regexp.MustCompile(`(?i)\bexhibit\b`),
	}

	// Words that mark the start of a fresh document. A page with none of
	// these and no detected type reads as a continuation.
	headerWords = []string{"form", "department", "certificate", "notice", "card", "passport", "visa"}
)

// New compiles a classifier from the configured rule table, falling back to
// the built-in defaults when the config carries no rules.
func New(cfg config.ClassifierConfig) (*Classifier, error) {
	raw := cfg.Rules
	if len(raw) == 0 {
		raw = DefaultRules()
	}

	compiled := make(map[model.DocumentType][]rule, len(raw))
	for typ, patterns := range raw {
		dt := model.DocumentType(typ)
		if !model.IsKnownDocumentType(dt) || dt == model.DocTypeUnknown {
			return nil, eris.Errorf("classify: rule table references unknown document type %q", typ)
		}
		for _, p := range patterns {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, eris.Wrapf(err, "classify: compile pattern %q for %s", p.Pattern, typ)
			}
			compiled[dt] = append(compiled[dt], rule{re: re, weight: p.Weight})
		}
	}

	return &Classifier{rules: compiled}, nil
}

// Classify scores one page's text against the rule table. Candidates come
// back ordered by score descending, exact ties broken by lexicographically
// smaller type so repeated runs produce identical output. A page matching
// nothing yields a single (UNKNOWN, 0.0) candidate.
//
// The continuation flag combines two signals: explicit markers count on any
// page, while the weak-page heuristics (short, headerless) only apply when no
// type was detected — a passport biographic page is short but is its own
// document, not a tail page.
func (c *Classifier) Classify(pageIndex int, text string) model.PageClassification {
	pc := model.PageClassification{PageIndex: pageIndex}
	finish := func() model.PageClassification {
		pc.Continuation = ContinuationCue(text) ||
			(pc.Top().Type == model.DocTypeUnknown && weakPage(text))
		return pc
	}

	if strings.TrimSpace(text) == "" {
		pc.Candidates = []model.TypeCandidate{{Type: model.DocTypeUnknown, Confidence: 0}}
		return finish()
	}

	type scored struct {
		typ   model.DocumentType
		score float64
	}
	var matches []scored
	for typ, rules := range c.rules {
		score := 0.0
		for _, r := range rules {
			if r.re.MatchString(text) {
				score += r.weight
			}
		}
		if score > 0 {
			matches = append(matches, scored{typ: typ, score: score})
		}
	}

	if len(matches) == 0 {
		pc.Candidates = []model.TypeCandidate{{Type: model.DocTypeUnknown, Confidence: 0}}
		return finish()
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].typ < matches[j].typ
	})

	pc.Candidates = make([]model.TypeCandidate, len(matches))
	for i, m := range matches {
		conf := m.score
		if conf > 1 {
			conf = 1
		}
		pc.Candidates[i] = model.TypeCandidate{Type: m.typ, Confidence: conf}
	}
	return finish()
}

// ContinuationCue reports whether the page carries an explicit continuation
// marker: page numbering, "continued", attachment or exhibit labels.
func ContinuationCue(text string) bool {
	for _, re := range continuationRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// weakPage reports whether an untyped page reads like the tail of the
// previous document: very short, or long but with no document header words.
func weakPage(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < shortPageChars {
		return true
	}

	lower := strings.ToLower(text)
	for _, w := range headerWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
