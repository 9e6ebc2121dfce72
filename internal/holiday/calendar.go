package holiday

import "fmt"

// Korean public holidays. Fixed-date holidays follow a per-year rule; the
// lunisolar ones (Seollal, Buddha's birthday, Chuseok) shift against the
// Gregorian calendar and are kept in a hand-maintained table per year.
//
// The calendar is advisory: it shades calendar views but is never subtracted
// from leave balances.

var fixed = []string{
	"01-01", // New Year's Day
	"03-01", // Independence Movement Day
	"05-05", // Children's Day
	"06-06", // Memorial Day
	"08-15", // Liberation Day
	"10-03", // National Foundation Day
	"10-09", // Hangul Day
	"12-25", // Christmas
}

var lunisolar = map[int][]string{
	2024: {"2024-02-09", "2024-02-10", "2024-02-11", "2024-05-15", "2024-09-16", "2024-09-17", "2024-09-18"},
	2025: {"2025-01-28", "2025-01-29", "2025-01-30", "2025-05-05", "2025-10-05", "2025-10-06", "2025-10-07"},
	2026: {"2026-02-17", "2026-02-18", "2026-02-19", "2026-05-24", "2026-09-24", "2026-09-25", "2026-09-26"},
	2027: {"2027-02-06", "2027-02-07", "2027-02-08", "2027-05-13", "2027-09-14", "2027-09-15", "2027-09-16"},
}

// For returns the non-working dates of a year as a YYYY-MM-DD set. Years
// outside the lunisolar table still get the fixed holidays.
func For(year int) map[string]struct{} {
	dates := make(map[string]struct{}, len(fixed)+7)
	for _, md := range fixed {
		dates[fmt.Sprintf("%04d-%s", year, md)] = struct{}{}
	}
	for _, d := range lunisolar[year] {
		dates[d] = struct{}{}
	}
	return dates
}

// IsHoliday reports whether a YYYY-MM-DD date string is a non-working date.
func IsHoliday(date string) bool {
	if len(date) < 4 {
		return false
	}
	var year int
	if _, err := fmt.Sscanf(date[:4], "%d", &year); err != nil {
		return false
	}
	_, ok := For(year)[date]
	return ok
}

// Dates returns the holidays of a year as a sorted-input slice (fixed rule
// order first, then the lunisolar table order).
func Dates(year int) []string {
	out := make([]string, 0, len(fixed)+7)
	for _, md := range fixed {
		out = append(out, fmt.Sprintf("%04d-%s", year, md))
	}
	out = append(out, lunisolar[year]...)
	return out
}
