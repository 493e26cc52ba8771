package repledge

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationMethod selects the interest rule used for a close quote.
type CalculationMethod string

const (
	Method1 CalculationMethod = "method1"
	Method2 CalculationMethod = "method2"
	Method3 CalculationMethod = "method3"
)

// ValidCalculationMethod reports whether m is a known method tag.
func ValidCalculationMethod(m string) bool {
	switch CalculationMethod(m) {
	case Method1, Method2, Method3:
		return true
	}
	return false
}

// MinDurationDays is the contractual minimum: the bank charges at least one
// week of interest no matter how quickly the repledge is settled.
const MinDurationDays = 7

// 360-day commercial year x 100 (rate is a percentage).
var commercialYearBasis = decimal.NewFromInt(360 * 100)

// Quote is the recomputable preview of what a close would cost. Never
// persisted; superseded by any input change.
type Quote struct {
	DurationDays       int               `json:"duration_days"`
	EffectiveRate      decimal.Decimal   `json:"effective_rate"`
	CalculatedInterest decimal.Decimal   `json:"calculated_interest"`
	TotalPayable       decimal.Decimal   `json:"total_payable"`
	Method             CalculationMethod `json:"method"`
	// MethodImplemented is false for the reserved method2/method3 tags, whose
	// zero interest is a placeholder and not a real zero-cost close.
	MethodImplemented bool `json:"method_implemented"`
}

// DurationDays returns the whole calendar days between start and end with the
// minimum-duration floor applied. A raw count of 7 or fewer days, including
// zero and negative ranges, is forced to exactly 7.
func DurationDays(start, end time.Time) int {
	days := rawDays(start, end)
	if days <= MinDurationDays {
		return MinDurationDays
	}
	return days
}

func rawDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// Compute produces a close quote for the given repledge terms. Pure and
// total over valid dates and numbers; it never returns an error. Interest and
// total payable are rounded to 2 decimal places, half away from zero; the
// total is rounded after summation, not before.
func Compute(start, end time.Time, principal, ratePercent decimal.Decimal, method CalculationMethod) Quote {
	days := DurationDays(start, end)
	q := Quote{
		DurationDays:  days,
		EffectiveRate: ratePercent,
		Method:        method,
	}

	var interest decimal.Decimal
	switch method {
	case Method1:
		q.MethodImplemented = true
		interest = principal.
			Mul(ratePercent).
			Mul(decimal.NewFromInt(int64(days))).
			Div(commercialYearBasis)
	default:
		// method2/method3 are reserved; they quote zero interest until the
		// bank publishes the rule.
		interest = decimal.Zero
	}

	q.CalculatedInterest = interest.Round(2)
	q.TotalPayable = principal.Add(interest).Round(2)
	return q
}
