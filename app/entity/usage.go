package entity

import "time"

// Usage is the durable per-customer, per-billing-period accumulator.
// One live row per open calendar-month period; a new period gets a new
// row rather than resetting the old one.
type Usage struct {
	CustomerID       string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	CallMinutesUsed  float64
	CallMinutesLimit int
	LastUpdated      time.Time
}

// BillingPeriod returns the calendar-month window containing now:
// [first-of-month 00:00:00 UTC, first-of-next-month 00:00:00 UTC).
func BillingPeriod(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
