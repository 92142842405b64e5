package granttime

import "time"

// DeriveOvertimeHours computes the whole-hour duration between two "HH:mm"
// clock times on a common reference date. Partial hours are floored.
// Negative spans and unparseable inputs clamp to 0.
//
// The result is display-only: it is shown as overtime hours (and, for
// fixed policies, as the implied compensation hours) but is never sent
// as a grant time itself.
func DeriveOvertimeHours(startTime, endTime string) int {
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return 0
	}

	hours := int(end.Sub(start).Hours())
	if hours < 0 {
		return 0
	}
	return hours
}
