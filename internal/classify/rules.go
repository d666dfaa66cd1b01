package classify

import (
	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/model"
)

// DefaultRules returns the built-in per-type keyword/pattern table. Weights
// are additive per type and the resulting score is capped at 1.0, so a single
// strong cue (a form number, a receipt number) is enough to classify a page
// while weaker cues (agency names) only reinforce.
func DefaultRules() map[string][]config.PatternRule {
	return map[string][]config.PatternRule{
		string(model.DocTypeI797): {
			{Pattern: `(?i)notice of action`, Weight: 0.55},
			{Pattern: `(?i)\bi-797\b`, Weight: 0.6},
			{Pattern: `(?i)approval notice`, Weight: 0.5},
			{Pattern: `(?i)receipt number[^\n]{0,40}\b[a-z]{3}\d{10}\b`, Weight: 0.35},
			{Pattern: `(?i)u\.s\. citizenship and immigration services`, Weight: 0.3},
			{Pattern: `(?i)department of homeland security`, Weight: 0.3},
			{Pattern: `(?i)\buscis\b`, Weight: 0.25},
		},
		string(model.DocTypeI797C): {
			{Pattern: `(?i)\bi-797c\b`, Weight: 0.75},
			{Pattern: `(?i)receipt notice`, Weight: 0.65},
			{Pattern: `(?i)receipt number`, Weight: 0.3},
			{Pattern: `(?i)notice of action`, Weight: 0.2},
		},
		string(model.DocTypeI129): {
			{Pattern: `(?i)petition for a nonimmigrant worker`, Weight: 0.8},
			{Pattern: `(?i)\bi-129\b`, Weight: 0.5},
		},
		string(model.DocTypePERM): {
			{Pattern: `(?i)application for permanent employment certification`, Weight: 0.8},
			{Pattern: `(?i)form 9089`, Weight: 0.7},
			{Pattern: `(?i)labor certification`, Weight: 0.6},
			{Pattern: `(?i)\bperm\b`, Weight: 0.45},
		},
		string(model.DocTypePWD): {
			{Pattern: `(?i)prevailing wage`, Weight: 0.7},
			{Pattern: `(?i)form 9141`, Weight: 0.7},
			{Pattern: `(?i)\bpwd\b`, Weight: 0.4},
		},
		string(model.DocTypeLCA): {
			{Pattern: `(?i)labor condition application`, Weight: 0.7},
			{Pattern: `(?i)eta[- ]9035`, Weight: 0.7},
			{Pattern: `(?i)form 9035`, Weight: 0.6},
			{Pattern: `(?i)\blca\b`, Weight: 0.5},
			{Pattern: `(?i)department of labor`, Weight: 0.25},
		},
		string(model.DocTypeI94): {
			{Pattern: `(?i)\bi[-\s]?94\b`, Weight: 0.5},
			{Pattern: `(?i)arrival[ /-]departure`, Weight: 0.4},
			{Pattern: `(?i)admission number`, Weight: 0.45},
			{Pattern: `(?i)class of admission`, Weight: 0.35},
		},
		string(model.DocTypeEAD): {
			{Pattern: `(?i)employment authorization`, Weight: 0.6},
			{Pattern: `(?i)\bi-766\b`, Weight: 0.6},
			{Pattern: `(?i)work permit`, Weight: 0.4},
			{Pattern: `(?i)uscis number[^\n]{0,20}[a-z0-9]{9}`, Weight: 0.25},
		},
		string(model.DocTypeGreenCard): {
			{Pattern: `(?i)permanent resident card`, Weight: 0.8},
			{Pattern: `(?i)green card`, Weight: 0.5},
			{Pattern: `(?i)\bi-551\b`, Weight: 0.6},
			{Pattern: `(?i)resident since`, Weight: 0.3},
		},
		string(model.DocTypeUSPassport): {
			{Pattern: `(?i)passport`, Weight: 0.45},
			{Pattern: `(?i)united states of america`, Weight: 0.35},
			{Pattern: `(?i)department of state`, Weight: 0.2},
		},
		string(model.DocTypeForeignPassport): {
			{Pattern: `(?i)passport`, Weight: 0.5},
			{Pattern: `(?i)\bpasseport\b|\bpasaporte\b|\breisepass\b`, Weight: 0.4},
		},
		string(model.DocTypeVisaStamp): {
			{Pattern: `(?i)nonimmigrant visa`, Weight: 0.6},
			{Pattern: `(?i)\bvisa\b`, Weight: 0.4},
			{Pattern: `(?i)\bembassy\b|\bconsulate\b`, Weight: 0.3},
			{Pattern: `(?i)issuing post`, Weight: 0.35},
		},
	}
}
