package model

import (
	"regexp"
	"strings"
	"time"
)

// Scanned documents carry dates in wildly inconsistent formats (machine
// readable zones use 19DEC1994, USCIS notices use 12/19/1994, DOL forms use
// ISO). ParseDate tries the formats we have seen in practice, in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2-Jan-2006",
	"2-January-2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006 January 2",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/06",
}

var (
	compactDateRe  = regexp.MustCompile(`^(\d{1,2})([A-Za-z]{3})(\d{4})$`)
	embeddedISORe  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	embeddedUSRe   = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
)

// ParseDate parses a date string in any of the formats seen on immigration
// documents. Returns the date (UTC midnight) and whether parsing succeeded.
// Null-ish values ("", "null", "n/a", "D/S") parse as absent, not as errors.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "n/a", "none", "d/s":
		return time.Time{}, false
	}

	// Machine-readable-zone style: 19DEC1994.
	if m := compactDateRe.FindStringSubmatch(s); m != nil {
		mon := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
		s = m[1] + "-" + mon + "-" + m[3]
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	// Last resort: a recognizable date embedded in surrounding text.
	if m := embeddedISORe.FindString(s); m != "" {
		if t, err := time.ParseInLocation("2006-01-02", m, time.UTC); err == nil {
			return t, true
		}
	}
	if m := embeddedUSRe.FindString(s); m != "" {
		if t, err := time.ParseInLocation("1/2/2006", m, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
