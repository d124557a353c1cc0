package vectorstore

import (
	"fmt"
	"strings"
)

// Filter is a conjunctive predicate on the date column. Nil bounds are open
// and both bounds are inclusive.
type Filter struct {
	DateFrom *int32
	DateTo   *int32
}

// DateBetween builds a filter from optional day counts.
func DateBetween(from, to *int32) Filter {
	return Filter{DateFrom: from, DateTo: to}
}

// IsEmpty reports whether the filter matches every row.
func (f Filter) IsEmpty() bool {
	return f.DateFrom == nil && f.DateTo == nil
}

// Match reports whether a row dated date passes the filter.
func (f Filter) Match(date int32) bool {
	if f.DateFrom != nil && date < *f.DateFrom {
		return false
	}
	if f.DateTo != nil && date > *f.DateTo {
		return false
	}
	return true
}

// String renders the predicate, e.g. "date >= 20290 AND date <= 20300".
func (f Filter) String() string {
	var parts []string
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("date >= %d", *f.DateFrom))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("date <= %d", *f.DateTo))
	}
	return strings.Join(parts, " AND ")
}
