// Package doctype holds the per-document-type strategy records: which fields
// the extraction collaborator is asked for, which of them identify a person,
// and which carry the document's event date. New document types are added by
// inserting a table entry here, nothing subclasses anything.
package doctype

import "github.com/meridian-legal/docaudit/internal/model"

// FieldSpec is one field the extraction prompt requests.
type FieldSpec struct {
	Name string
	Hint string
}

// Template is the strategy record for one document type.
type Template struct {
	// Intro is the one-line document description used in the prompt.
	Intro string
	// Fields is the extraction schema, in prompt order.
	Fields []FieldSpec
	// NameFields are probed in order for the person's full name.
	NameFields []string
	// GivenFields / FamilyFields are probed pairwise when no single
	// full-name field exists; the name is composed "given family".
	GivenFields  []string
	FamilyFields []string
	// DOBFields are probed in order for the date of birth.
	DOBFields []string
	// IDFields are government identifiers usable for exact identity matches.
	IDFields []string
	// EventDateFields are probed in order for the document's primary event
	// date on the person timeline.
	EventDateFields []string
	// CitizenshipFields are probed for nationality consistency checks.
	CitizenshipFields []string
}

var templates = map[model.DocumentType]Template{
	model.DocTypeI797: {
		Intro: "an I-797 USCIS Notice of Action (including I-140 and I-129 approval notices)",
		Fields: []FieldSpec{
			{Name: "receipt_number", Hint: "e.g. IOE0926970247"},
			{Name: "received_date", Hint: "YYYY-MM-DD"},
			{Name: "notice_date", Hint: "YYYY-MM-DD"},
			{Name: "priority_date", Hint: "YYYY-MM-DD"},
			{Name: "case_type", Hint: "e.g. I140 - IMMIGRANT PETITION FOR ALIEN WORKER"},
			{Name: "petitioner", Hint: "company name"},
			{Name: "beneficiary", Hint: "person name"},
			{Name: "notice_type", Hint: "e.g. Approval Notice"},
			{Name: "classification", Hint: "e.g. H1B, EB-1, EB-2"},
			{Name: "valid_from", Hint: "YYYY-MM-DD"},
			{Name: "valid_to", Hint: "YYYY-MM-DD"},
			{Name: "i94_number", Hint: ""},
			{Name: "country_of_citizenship", Hint: ""},
		},
		NameFields:        []string{"beneficiary"},
		DOBFields:         []string{"date_of_birth", "birth_date"},
		IDFields:          []string{"receipt_number", "i94_number"},
		EventDateFields:   []string{"notice_date", "received_date", "valid_from"},
		CitizenshipFields: []string{"country_of_citizenship"},
	},
	model.DocTypeI797C: {
		Intro: "an I-797C Receipt Notice (including I-140 and I-129 receipt notices)",
		Fields: []FieldSpec{
			{Name: "receipt_number", Hint: "MSC/NBC/EAC/WAC/IOE + 10 digits"},
			{Name: "case_type", Hint: ""},
			{Name: "received_date", Hint: "YYYY-MM-DD"},
			{Name: "notice_date", Hint: "YYYY-MM-DD"},
			{Name: "petitioner", Hint: "company name"},
			{Name: "beneficiary", Hint: "person name"},
			{Name: "priority_date", Hint: "YYYY-MM-DD"},
			{Name: "notice_type", Hint: "typically Receipt Notice"},
		},
		NameFields:      []string{"beneficiary"},
		DOBFields:       []string{"date_of_birth", "birth_date"},
		IDFields:        []string{"receipt_number"},
		EventDateFields: []string{"received_date", "notice_date"},
	},
	model.DocTypeI129: {
		Intro: "an I-129 Petition for a Nonimmigrant Worker",
		Fields: []FieldSpec{
			{Name: "family_name", Hint: "last name"},
			{Name: "given_name", Hint: "first name"},
			{Name: "date_of_birth", Hint: "YYYY-MM-DD"},
			{Name: "country_of_birth", Hint: ""},
			{Name: "country_of_citizenship", Hint: ""},
			{Name: "passport_number", Hint: ""},
			{Name: "passport_issue_date", Hint: "YYYY-MM-DD"},
			{Name: "passport_expiry_date", Hint: "YYYY-MM-DD"},
			{Name: "street_address", Hint: ""},
			{Name: "city", Hint: ""},
			{Name: "state", Hint: ""},
			{Name: "zip_code", Hint: ""},
		},
		GivenFields:       []string{"given_name"},
		FamilyFields:      []string{"family_name"},
		DOBFields:         []string{"date_of_birth"},
		IDFields:          []string{"passport_number"},
		EventDateFields:   []string{"passport_issue_date"},
		CitizenshipFields: []string{"country_of_citizenship", "country_of_birth"},
	},
	model.DocTypePERM: {
		Intro: "a PERM Labor Certification (ETA Form 9089)",
		Fields: []FieldSpec{
			{Name: "perm_case_number", Hint: ""},
			{Name: "case_status", Hint: ""},
			{Name: "determination_date", Hint: "YYYY-MM-DD"},
			{Name: "expiration_date", Hint: "YYYY-MM-DD"},
		},
		EventDateFields: []string{"determination_date", "expiration_date"},
	},
	model.DocTypePWD: {
		Intro: "a Prevailing Wage Determination (ETA Form 9141)",
		Fields: []FieldSpec{
			{Name: "pwd_case_number", Hint: ""},
			{Name: "case_status", Hint: ""},
			{Name: "validity_period", Hint: ""},
			{Name: "determination_date", Hint: "YYYY-MM-DD"},
			{Name: "expiration_date", Hint: "YYYY-MM-DD"},
		},
		EventDateFields: []string{"determination_date", "expiration_date"},
	},
	model.DocTypeLCA: {
		Intro: "a Labor Condition Application (ETA Form 9035)",
		Fields: []FieldSpec{
			{Name: "job_title", Hint: ""},
			{Name: "soc_code", Hint: ""},
			{Name: "soc_occupation_title", Hint: ""},
			{Name: "legal_business_name", Hint: ""},
			{Name: "wage_rate", Hint: ""},
			{Name: "case_number", Hint: ""},
			{Name: "case_status", Hint: ""},
			{Name: "begin_date", Hint: "YYYY-MM-DD, employment period start"},
			{Name: "end_date", Hint: "YYYY-MM-DD, employment period end"},
			{Name: "city", Hint: ""},
			{Name: "state", Hint: ""},
		},
		EventDateFields: []string{"begin_date"},
	},
	model.DocTypeI94: {
		Intro: "an I-94 Arrival/Departure Record",
		Fields: []FieldSpec{
			{Name: "admission_record_number", Hint: "11 digits"},
			{Name: "arrival_date", Hint: "YYYY-MM-DD"},
			{Name: "class_of_admission", Hint: "visa category"},
			{Name: "admit_until_date", Hint: "YYYY-MM-DD or D/S"},
			{Name: "last_name", Hint: ""},
			{Name: "first_name", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "document_number", Hint: "passport number"},
			{Name: "country_of_citizenship", Hint: ""},
		},
		GivenFields:       []string{"first_name", "given_name"},
		FamilyFields:      []string{"last_name", "surname"},
		DOBFields:         []string{"birth_date", "date_of_birth"},
		IDFields:          []string{"admission_record_number", "document_number"},
		EventDateFields:   []string{"arrival_date"},
		CitizenshipFields: []string{"country_of_citizenship"},
	},
	model.DocTypeEAD: {
		Intro: "an Employment Authorization Document (Form I-766)",
		Fields: []FieldSpec{
			{Name: "full_name", Hint: ""},
			{Name: "uscis_number", Hint: ""},
			{Name: "card_number", Hint: ""},
			{Name: "category", Hint: "e.g. C09, A05"},
			{Name: "country_of_birth", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "issue_date", Hint: "YYYY-MM-DD"},
			{Name: "expiration_date", Hint: "YYYY-MM-DD"},
		},
		NameFields:        []string{"full_name"},
		DOBFields:         []string{"birth_date", "date_of_birth"},
		IDFields:          []string{"uscis_number", "card_number"},
		EventDateFields:   []string{"issue_date", "expiration_date"},
		CitizenshipFields: []string{"country_of_birth"},
	},
	model.DocTypeGreenCard: {
		Intro: "a Permanent Resident Card (Form I-551)",
		Fields: []FieldSpec{
			{Name: "full_name", Hint: ""},
			{Name: "alien_number", Hint: "e.g. A123456789"},
			{Name: "uscis_number", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "country_of_birth", Hint: ""},
			{Name: "issue_date", Hint: "YYYY-MM-DD"},
			{Name: "expiration_date", Hint: "YYYY-MM-DD"},
			{Name: "resident_since", Hint: "YYYY-MM-DD"},
			{Name: "category", Hint: "e.g. IR1, F1"},
		},
		NameFields:        []string{"full_name"},
		DOBFields:         []string{"birth_date", "date_of_birth"},
		IDFields:          []string{"alien_number", "uscis_number"},
		EventDateFields:   []string{"resident_since", "issue_date"},
		CitizenshipFields: []string{"country_of_birth"},
	},
	model.DocTypeUSPassport: {
		Intro: "a United States passport",
		Fields: []FieldSpec{
			{Name: "holder_name", Hint: ""},
			{Name: "passport_number", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "birth_place", Hint: ""},
			{Name: "date_of_issue", Hint: "YYYY-MM-DD"},
			{Name: "date_of_expiry", Hint: "YYYY-MM-DD"},
		},
		NameFields:      []string{"holder_name"},
		DOBFields:       []string{"birth_date", "date_of_birth"},
		IDFields:        []string{"passport_number"},
		EventDateFields: []string{"date_of_issue"},
	},
	model.DocTypeForeignPassport: {
		Intro: "a foreign passport",
		Fields: []FieldSpec{
			{Name: "holder_name", Hint: ""},
			{Name: "passport_number", Hint: ""},
			{Name: "issuing_country", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "birth_place", Hint: ""},
			{Name: "date_of_issue", Hint: "YYYY-MM-DD"},
			{Name: "date_of_expiry", Hint: "YYYY-MM-DD"},
		},
		NameFields:        []string{"holder_name"},
		DOBFields:         []string{"birth_date", "date_of_birth"},
		IDFields:          []string{"passport_number"},
		EventDateFields:   []string{"date_of_issue"},
		CitizenshipFields: []string{"issuing_country"},
	},
	model.DocTypeVisaStamp: {
		Intro: "a visa stamp from a passport",
		Fields: []FieldSpec{
			{Name: "issuing_post_name", Hint: ""},
			{Name: "surname", Hint: ""},
			{Name: "given_name", Hint: ""},
			{Name: "passport_number", Hint: ""},
			{Name: "control_number", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "issue_date", Hint: "YYYY-MM-DD"},
			{Name: "expiration_date", Hint: "YYYY-MM-DD"},
			{Name: "visa_type", Hint: "e.g. H1B"},
			{Name: "nationality", Hint: ""},
		},
		GivenFields:       []string{"given_name"},
		FamilyFields:      []string{"surname"},
		DOBFields:         []string{"birth_date", "date_of_birth"},
		IDFields:          []string{"passport_number", "control_number"},
		EventDateFields:   []string{"issue_date"},
		CitizenshipFields: []string{"nationality"},
	},
	model.DocTypeUnknown: {
		Intro: "an immigration-related document of unknown type",
		Fields: []FieldSpec{
			{Name: "document_type", Hint: "best guess at the document type"},
			{Name: "full_name", Hint: ""},
			{Name: "birth_date", Hint: "YYYY-MM-DD"},
			{Name: "document_number", Hint: ""},
			{Name: "issue_date", Hint: "YYYY-MM-DD"},
			{Name: "expiry_date", Hint: "YYYY-MM-DD"},
			{Name: "issuing_authority", Hint: ""},
		},
		NameFields:      []string{"full_name"},
		DOBFields:       []string{"birth_date", "date_of_birth"},
		IDFields:        []string{"document_number"},
		EventDateFields: []string{"issue_date"},
	},
}

// For returns the strategy record for a document type. Unregistered types
// fall back to the generic UNKNOWN template.
func For(dt model.DocumentType) Template {
	if t, ok := templates[dt]; ok {
		return t
	}
	return templates[model.DocTypeUnknown]
}

// PersonName extracts the person's name from a segment's fields using the
// type's probe order: a dedicated full-name field first, then a composed
// "given family" pair, then the generic fallbacks shared by all types.
func PersonName(seg *model.DocumentSegment) (string, bool) {
	t := For(seg.Type)

	if name, ok := seg.FirstField(t.NameFields...); ok {
		return name, true
	}
	if given, ok := seg.FirstField(t.GivenFields...); ok {
		if family, ok := seg.FirstField(t.FamilyFields...); ok {
			return given + " " + family, true
		}
		return given, true
	}
	if family, ok := seg.FirstField(t.FamilyFields...); ok {
		return family, true
	}
	return seg.FirstField("beneficiary", "full_name", "holder_name")
}

// DateOfBirth extracts the DOB field value for the segment's type.
func DateOfBirth(seg *model.DocumentSegment) (string, bool) {
	t := For(seg.Type)
	if v, ok := seg.FirstField(t.DOBFields...); ok {
		return v, true
	}
	return seg.FirstField("date_of_birth", "birth_date")
}

// GovernmentIDs returns the non-empty government identifier values present
// on the segment, in the type's declared order.
func GovernmentIDs(seg *model.DocumentSegment) []string {
	t := For(seg.Type)
	var ids []string
	for _, f := range t.IDFields {
		if fv, ok := seg.Field(f); ok {
			ids = append(ids, fv.Value)
		}
	}
	return ids
}

// Citizenship extracts the citizenship/nationality value for the segment's
// type.
func Citizenship(seg *model.DocumentSegment) (string, bool) {
	t := For(seg.Type)
	if v, ok := seg.FirstField(t.CitizenshipFields...); ok {
		return v, true
	}
	return seg.FirstField("country_of_citizenship", "nationality", "country_of_birth")
}

// EventDate returns the segment's primary event date field name and parsed
// value, probing the type's preference order.
func EventDate(seg *model.DocumentSegment) (string, string, bool) {
	t := For(seg.Type)
	for _, f := range t.EventDateFields {
		if fv, ok := seg.Field(f); ok {
			return f, fv.Value, true
		}
	}
	// Shared fallbacks, mirroring the fields most documents carry.
	for _, f := range []string{"notice_date", "issue_date", "received_date", "arrival_date", "expiration_date"} {
		if fv, ok := seg.Field(f); ok {
			return f, fv.Value, true
		}
	}
	return "", "", false
}
