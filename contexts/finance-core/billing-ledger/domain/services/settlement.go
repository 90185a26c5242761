package services

import (
	"math"
	"time"

	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
)

// Settlement sums the payments recorded for an invoice. Shortfall is never
// negative; overpayment shows as zero shortfall.
func Settlement(amount float64, payments []entities.Payment) (paid float64, shortfall float64) {
	for _, payment := range payments {
		paid += payment.Amount
	}
	paid = roundCents(paid)
	return paid, math.Max(0, roundCents(amount-paid))
}

// PastDue reports whether the due date's calendar day has ended in loc.
func PastDue(dueDate time.Time, now time.Time, loc *time.Location) bool {
	if dueDate.IsZero() {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := dueDate.Date()
	return now.After(time.Date(y, m, d, 23, 59, 59, 0, loc))
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
