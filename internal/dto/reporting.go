package dto

// ReportDateParams defines query parameters for point-in-time reports.
// Dates use the 2006-01-02 layout; empty means "today".
type ReportDateParams struct {
	Date string `form:"date"`
}

// ReportRangeParams defines query parameters for period reports. Empty
// start defaults to the first day of the end date's year; empty end to
// today.
type ReportRangeParams struct {
	Start string `form:"start"`
	End   string `form:"end"`
}
