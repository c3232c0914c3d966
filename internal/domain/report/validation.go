package report

import "time"

// DateLayout is the only accepted report date format (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// IsDateValid reports whether s is a real calendar date in YYYY-MM-DD form.
// Impossible dates such as 2023-02-30 and year 0000 are rejected.
func IsDateValid(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Year() >= 1
}

// IsColumnNameValid reports whether name is a known column identifier
func IsColumnNameValid(name string) bool {
	_, ok := ParseColumn(name)
	return ok
}

// IsObjectValid reports whether name is a known entity type, exact case
func IsObjectValid(name string) bool {
	_, ok := ParseEntityType(name)
	return ok
}
