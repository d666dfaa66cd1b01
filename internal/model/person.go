package model

// Identity attribute keys used by the resolver and cross-document validator.
const (
	AttrName         = "name"
	AttrDateOfBirth  = "date_of_birth"
	AttrCitizenship  = "citizenship"
	AttrGovernmentID = "government_id"
)

// AttributeValue is an identity attribute observation with the confidence of
// the extraction it came from.
type AttributeValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Person is a cluster of segments resolved to one individual. NameVariants
// keeps every distinct original name string observed, in first-seen order,
// so the report can show spelling drift across documents.
type Person struct {
	ID                 string                    `json:"id"`
	NameVariants       []string                  `json:"name_variants"`
	IdentityAttributes map[string]AttributeValue `json:"identity_attributes,omitempty"`
	LinkedSegmentIDs   []string                  `json:"linked_segment_ids"`
}

// AddNameVariant records a name string if it has not been seen yet.
func (p *Person) AddNameVariant(name string) {
	if name == "" {
		return
	}
	for _, v := range p.NameVariants {
		if v == name {
			return
		}
	}
	p.NameVariants = append(p.NameVariants, name)
}

// LinksSegment reports whether the person already links the segment.
func (p *Person) LinksSegment(segmentID string) bool {
	for _, id := range p.LinkedSegmentIDs {
		if id == segmentID {
			return true
		}
	}
	return false
}
