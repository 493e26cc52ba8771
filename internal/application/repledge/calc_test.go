package repledge

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays_Floor(t *testing.T) {
	start := date(2024, 1, 10)
	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same day", date(2024, 1, 10), 7},
		{"one day", date(2024, 1, 11), 7},
		{"exactly seven", date(2024, 1, 17), 7},
		{"eight days", date(2024, 1, 18), 8},
		{"end before start", date(2024, 1, 3), 7},
		{"well before start", date(2023, 12, 1), 7},
		{"sixty days", date(2024, 3, 10), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DurationDays(start, tt.end))
		})
	}
}

func TestCompute_Method1_ClampedWeek(t *testing.T) {
	// 4 raw days clamps to 7: 100000 x 1.5 x 7 / 36000 = 29.1666... -> 29.17
	q := Compute(date(2024, 1, 1), date(2024, 1, 5),
		decimal.NewFromInt(100000), decimal.NewFromFloat(1.5), Method1)

	assert.Equal(t, 7, q.DurationDays)
	assert.True(t, q.MethodImplemented)
	assert.Equal(t, "29.17", q.CalculatedInterest.StringFixed(2))
	assert.Equal(t, "100029.17", q.TotalPayable.StringFixed(2))
	assert.Equal(t, "1.5", q.EffectiveRate.String())
}

func TestCompute_Method1_SixtyDays(t *testing.T) {
	// 50000 x 2 x 60 / 36000 = 166.666... -> 166.67
	q := Compute(date(2024, 1, 1), date(2024, 3, 1),
		decimal.NewFromInt(50000), decimal.NewFromInt(2), Method1)

	assert.Equal(t, 60, q.DurationDays)
	assert.Equal(t, "166.67", q.CalculatedInterest.StringFixed(2))
	assert.Equal(t, "50166.67", q.TotalPayable.StringFixed(2))
}

func TestCompute_ZeroPrincipalAndRate(t *testing.T) {
	q := Compute(date(2024, 1, 1), date(2024, 6, 1),
		decimal.Zero, decimal.NewFromInt(2), Method1)
	assert.True(t, q.CalculatedInterest.IsZero())
	assert.True(t, q.TotalPayable.IsZero())

	q = Compute(date(2024, 1, 1), date(2024, 6, 1),
		decimal.NewFromInt(75000), decimal.Zero, Method1)
	assert.True(t, q.CalculatedInterest.IsZero())
	assert.Equal(t, "75000.00", q.TotalPayable.StringFixed(2))
}

func TestCompute_PlaceholderMethods(t *testing.T) {
	for _, m := range []CalculationMethod{Method2, Method3} {
		q := Compute(date(2024, 1, 1), date(2024, 12, 1),
			decimal.NewFromInt(250000), decimal.NewFromFloat(2.5), m)
		assert.False(t, q.MethodImplemented, string(m))
		assert.True(t, q.CalculatedInterest.IsZero(), string(m))
		assert.Equal(t, "250000.00", q.TotalPayable.StringFixed(2), string(m))
		assert.Equal(t, "2.5", q.EffectiveRate.String(), string(m))
	}
}

func TestCompute_MonotonicInPrincipalRateDuration(t *testing.T) {
	start := date(2024, 1, 1)
	base := Compute(start, date(2024, 2, 1), decimal.NewFromInt(10000), decimal.NewFromInt(2), Method1)

	bigger := Compute(start, date(2024, 2, 1), decimal.NewFromInt(20000), decimal.NewFromInt(2), Method1)
	assert.True(t, bigger.CalculatedInterest.GreaterThanOrEqual(base.CalculatedInterest))

	steeper := Compute(start, date(2024, 2, 1), decimal.NewFromInt(10000), decimal.NewFromInt(3), Method1)
	assert.True(t, steeper.CalculatedInterest.GreaterThanOrEqual(base.CalculatedInterest))

	longer := Compute(start, date(2024, 3, 1), decimal.NewFromInt(10000), decimal.NewFromInt(2), Method1)
	assert.True(t, longer.CalculatedInterest.GreaterThanOrEqual(base.CalculatedInterest))
}

func TestCompute_RoundingIdempotent(t *testing.T) {
	// 10000 x 1.8 x 20 / 36000 = 10.00 exactly; rounding must not move it.
	q := Compute(date(2024, 1, 1), date(2024, 1, 21),
		decimal.NewFromInt(10000), decimal.NewFromFloat(1.8), Method1)
	assert.Equal(t, 20, q.DurationDays)
	assert.Equal(t, "10.00", q.CalculatedInterest.StringFixed(2))
	assert.Equal(t, q.CalculatedInterest.Round(2).String(), q.CalculatedInterest.String())
}

func TestValidCalculationMethod(t *testing.T) {
	assert.True(t, ValidCalculationMethod("method1"))
	assert.True(t, ValidCalculationMethod("method3"))
	assert.False(t, ValidCalculationMethod("method4"))
	assert.False(t, ValidCalculationMethod(""))
}
