package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-legal/docaudit/internal/model"
)

func person(id string, segIDs ...string) model.Person {
	return model.Person{ID: id, LinkedSegmentIDs: segIDs}
}

func TestCrossDocument_NameVariantsWarn(t *testing.T) {
	v := New(testNow)

	segments := []model.DocumentSegment{
		*seg("seg-001", model.DocTypeI797, map[string]model.FieldValue{
			"beneficiary": fv("Maria Elena Rivera"),
		}),
		*seg("seg-002", model.DocTypeForeignPassport, map[string]model.FieldValue{
			"holder_name":     fv("Maria E. Rivera"),
			"passport_number": fv("X1234567"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	issues := v.CrossDocument(persons, segments)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityWarning, issues[0].Severity)
	assert.Equal(t, model.ScopeCrossDocument, issues[0].Scope)
	assert.Equal(t, []string{"seg-001", "seg-002"}, issues[0].SegmentIDs)
	assert.Contains(t, issues[0].Message, "name variants")
}

func TestCrossDocument_CaseAndAccentFoldIsNotAVariant(t *testing.T) {
	v := New(testNow)

	segments := []model.DocumentSegment{
		*seg("seg-001", model.DocTypeI797, map[string]model.FieldValue{
			"beneficiary": fv("José García"),
		}),
		*seg("seg-002", model.DocTypeI94, map[string]model.FieldValue{
			"full_name": fv("JOSE GARCIA"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	assert.Empty(t, v.CrossDocument(persons, segments))
}

func TestCrossDocument_DOBMismatchIsError(t *testing.T) {
	v := New(testNow)

	segments := []model.DocumentSegment{
		*seg("seg-001", model.DocTypeForeignPassport, map[string]model.FieldValue{
			"holder_name":     fv("Arjun Kumar"),
			"passport_number": fv("N1234567"),
			"birth_date":      fv("1990-01-01"),
		}),
		*seg("seg-002", model.DocTypeVisaStamp, map[string]model.FieldValue{
			"given_name":      fv("Arjun"),
			"surname":         fv("Kumar"),
			"passport_number": fv("N1234567"),
			"birth_date":      fv("01/02/1990"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	issues := v.CrossDocument(persons, segments)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "date of birth differs")
}

func TestCrossDocument_CitizenshipMismatchWarns(t *testing.T) {
	v := New(testNow)

	segments := []model.DocumentSegment{
		*seg("seg-001", model.DocTypeI797, map[string]model.FieldValue{
			"beneficiary":            fv("Li Wei"),
			"country_of_citizenship": fv("China"),
		}),
		*seg("seg-002", model.DocTypeI94, map[string]model.FieldValue{
			"full_name":              fv("Li Wei"),
			"country_of_citizenship": fv("Singapore"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001", "seg-002")}

	issues := v.CrossDocument(persons, segments)
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "citizenship differs")
}

func TestCrossDocument_SingleSegmentPersonsSkipped(t *testing.T) {
	v := New(testNow)

	segments := []model.DocumentSegment{
		*seg("seg-001", model.DocTypeI797, map[string]model.FieldValue{
			"beneficiary": fv("Solo Person"),
		}),
	}
	persons := []model.Person{person("person-01", "seg-001")}

	assert.Empty(t, v.CrossDocument(persons, segments))
}
