package document

import (
	"strconv"
	"strings"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName turns a "01".."12" month value into its English name. Anything
// else is returned unchanged.
func MonthName(v string) string {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 || n > len(monthNames) {
		return v
	}
	return monthNames[n-1]
}

// FormatDateRange renders "Month Year - Month Year", or "Month Year - Present"
// when the end pair is incomplete. ok is false when the start pair is
// incomplete, in which case no date line is shown.
func FormatDateRange(startMonth, startYear, endMonth, endYear string) (s string, ok bool) {
	if startMonth == "" || startYear == "" {
		return "", false
	}
	end := "Present"
	if endMonth != "" && endYear != "" {
		end = MonthName(endMonth) + " " + endYear
	}
	return MonthName(startMonth) + " " + startYear + " - " + end, true
}
