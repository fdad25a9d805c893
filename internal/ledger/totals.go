package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"resto-ledger/internal/model"
)

// DateLayout is the ISO calendar date format used on the wire.
const DateLayout = "2006-01-02"

// yearMonth splits an ISO date on '-' and returns its year and month.
func yearMonth(date string) (year, month int, ok bool) {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return 0, 0, false
	}

	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}

// FilterByMonth keeps purchases dated in the given month and year, sorted by
// date descending. Malformed dates never match.
func FilterByMonth(purchases []model.Purchase, month, year int) []model.Purchase {
	filtered := make([]model.Purchase, 0, len(purchases))
	for _, p := range purchases {
		y, m, ok := yearMonth(p.Date)
		if ok && y == year && m == month {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return newerFirst(filtered[i].Date, filtered[j].Date)
	})
	return filtered
}

// newerFirst orders ISO dates by calendar value, newest first. Dates that do
// not parse sort after the ones that do.
func newerFirst(a, b string) bool {
	ta, aErr := time.Parse(DateLayout, a)
	tb, bErr := time.Parse(DateLayout, b)
	switch {
	case aErr == nil && bErr == nil:
		return ta.After(tb)
	case (aErr == nil) != (bErr == nil):
		return aErr == nil
	default:
		return a > b
	}
}

// DistinctDates returns the unique purchase dates, newest first. Dates are
// compared as calendar values; unparseable dates go last.
func DistinctDates(purchases []model.Purchase) []string {
	seen := make(map[string]struct{}, len(purchases))
	dates := make([]string, 0, len(purchases))
	for _, p := range purchases {
		if _, ok := seen[p.Date]; ok {
			continue
		}
		seen[p.Date] = struct{}{}
		dates = append(dates, p.Date)
	}

	sort.SliceStable(dates, func(i, j int) bool {
		return newerFirst(dates[i], dates[j])
	})
	return dates
}

// PurchasesOnDate returns the purchases recorded on date.
func PurchasesOnDate(purchases []model.Purchase, date string) []model.Purchase {
	var out []model.Purchase
	for _, p := range purchases {
		if p.Date == date {
			out = append(out, p)
		}
	}
	return out
}

// TotalForDate sums the cost of every ingredient line bought on date.
func TotalForDate(purchases []model.Purchase, date string) float64 {
	return TotalForMonth(PurchasesOnDate(purchases, date))
}

// TotalForMonth sums the cost of every ingredient line in purchases, which
// is expected to be already filtered to one month.
func TotalForMonth(purchases []model.Purchase) float64 {
	total := 0.0
	for _, p := range purchases {
		total += p.Total()
	}
	return total
}

// DefaultPurchaseDate returns the date a new purchase form starts with: the
// selected month and year with today's day, or the first of the month when
// that day does not exist in it.
func DefaultPurchaseDate(today time.Time, month, year int) string {
	d := time.Date(year, time.Month(month), today.Day(), 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month {
		d = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}
	return d.Format(DateLayout)
}

// ValidDate reports whether s is an ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
