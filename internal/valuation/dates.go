package valuation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Disclosure dates arrive in whatever shape the source spreadsheet used.
var (
	excelDatePattern = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{2})$`)
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseFlexibleDate parses ISO dates, Excel-style "30-Sep-24" dates, and
// slash-delimited dates. Slash dates are ambiguous; when the first group
// exceeds 12 it must be a day, otherwise US month-first order is assumed.
// Two-digit years are taken as 21st century.
func ParseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, eris.New("valuation: empty date")
	}

	if m := excelDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthAbbrevs[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, eris.Errorf("valuation: unknown month %q in date %q", m[2], s)
		}
		year, _ := strconv.Atoi(m[3])
		return dateOf(2000+year, month, day, s)
	}

	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		p1, _ := strconv.Atoi(m[1])
		p2, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		month, day := p1, p2
		if p1 > 12 && p2 <= 12 {
			day, month = p1, p2
		}
		return dateOf(year, time.Month(month), day, s)
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, eris.Errorf("valuation: unparseable date %q", s)
}

func dateOf(year int, month time.Month, day int, src string) (time.Time, error) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, eris.Errorf("valuation: invalid date %q", src)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like Feb 30.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, eris.Errorf("valuation: invalid date %q", src)
	}
	return t, nil
}

// NormalizeDate renders a flexible date as "2006-01-02", or returns the input
// unchanged when it cannot be parsed. Mirrors the intake behavior: a bad date
// is a data-quality issue, not a reason to reject the record.
func NormalizeDate(s string) string {
	t, err := ParseFlexibleDate(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
