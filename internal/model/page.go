package model

// Page is a single page of the input case file. Pages are produced by the
// ingestion layer and are immutable from then on: the pipeline reads them
// but never rewrites text or reorders indices.
type Page struct {
	Index    int    `json:"index"`
	RawText  string `json:"raw_text"`
	ImageRef string `json:"image_ref,omitempty"`
}

// DocumentType identifies the kind of immigration document a segment holds.
type DocumentType string

const (
	DocTypeI797            DocumentType = "I797"
	DocTypeI797C           DocumentType = "I797C"
	DocTypeI129            DocumentType = "I129"
	DocTypePERM            DocumentType = "PERM"
	DocTypePWD             DocumentType = "PWD"
	DocTypeLCA             DocumentType = "LCA"
	DocTypeI94             DocumentType = "I94"
	DocTypeEAD             DocumentType = "EAD"
	DocTypeGreenCard       DocumentType = "GREEN_CARD"
	DocTypeUSPassport      DocumentType = "US_PASSPORT"
	DocTypeForeignPassport DocumentType = "FOREIGN_PASSPORT"
	DocTypeVisaStamp       DocumentType = "VISA_STAMP"
	DocTypeUnknown         DocumentType = "UNKNOWN"
)

// AllDocumentTypes returns every known document type except UNKNOWN.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeI797,
		DocTypeI797C,
		DocTypeI129,
		DocTypePERM,
		DocTypePWD,
		DocTypeLCA,
		DocTypeI94,
		DocTypeEAD,
		DocTypeGreenCard,
		DocTypeUSPassport,
		DocTypeForeignPassport,
		DocTypeVisaStamp,
	}
}

// IsKnownDocumentType reports whether dt is one of the defined types
// (UNKNOWN included).
func IsKnownDocumentType(dt DocumentType) bool {
	if dt == DocTypeUnknown {
		return true
	}
	for _, t := range AllDocumentTypes() {
		if t == dt {
			return true
		}
	}
	return false
}

// TypeCandidate is one classifier vote for a page: a document type with the
// confidence the rule table assigned it.
type TypeCandidate struct {
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// PageClassification is the classifier output for a single page: candidates
// ordered by descending confidence, plus the continuation signal.
type PageClassification struct {
	PageIndex    int             `json:"page_index"`
	Candidates   []TypeCandidate `json:"candidates"`
	Continuation bool            `json:"continuation"`
}

// Top returns the highest-confidence candidate. Classifier output always has
// at least one candidate (UNKNOWN with confidence 0 when nothing matched).
func (pc PageClassification) Top() TypeCandidate {
	if len(pc.Candidates) == 0 {
		return TypeCandidate{Type: DocTypeUnknown, Confidence: 0}
	}
	return pc.Candidates[0]
}
