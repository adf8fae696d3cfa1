package billing

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyPlan(price string) *plan.Plan {
	return &plan.Plan{
		ID:           "plan_test_monthly_" + price,
		Name:         "Test",
		Price:        decimal.RequireFromString(price),
		BillingCycle: types.BillingCycleMonthly,
		Status:       types.PlanStatusActive,
	}
}

func yearlyPlan(price string) *plan.Plan {
	p := monthlyPlan(price)
	p.BillingCycle = types.BillingCycleYearly
	return p
}

func TestCycleEnd(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name     string
		start    time.Time
		cycle    types.BillingCycle
		expected time.Time
	}{
		{
			name:     "monthly mid month",
			start:    date(2024, time.October, 10),
			cycle:    types.BillingCycleMonthly,
			expected: date(2024, time.November, 10),
		},
		{
			name:     "monthly jan 31 clamps to leap feb 29",
			start:    date(2024, time.January, 31),
			cycle:    types.BillingCycleMonthly,
			expected: date(2024, time.February, 29),
		},
		{
			name:     "monthly jan 31 clamps to feb 28 in non leap year",
			start:    date(2023, time.January, 31),
			cycle:    types.BillingCycleMonthly,
			expected: date(2023, time.February, 28),
		},
		{
			name:     "monthly dec 31 rolls into next year",
			start:    date(2024, time.December, 31),
			cycle:    types.BillingCycleMonthly,
			expected: date(2025, time.January, 31),
		},
		{
			name:     "monthly march 31 clamps to april 30",
			start:    date(2024, time.March, 31),
			cycle:    types.BillingCycleMonthly,
			expected: date(2024, time.April, 30),
		},
		{
			name:     "yearly plain",
			start:    date(2024, time.October, 1),
			cycle:    types.BillingCycleYearly,
			expected: date(2025, time.October, 1),
		},
		{
			name:     "yearly leap feb 29 clamps to feb 28",
			start:    date(2024, time.February, 29),
			cycle:    types.BillingCycleYearly,
			expected: date(2025, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.CycleEnd(tt.start, tt.cycle)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestProratedCharge(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name     string
		amount   string
		cycle    types.BillingCycle
		start    time.Time
		end      time.Time
		expected string
	}{
		{
			name:     "ten days of october at 100",
			amount:   "100",
			cycle:    types.BillingCycleMonthly,
			start:    date(2024, time.October, 1),
			end:      date(2024, time.October, 10),
			expected: "32.26",
		},
		{
			name:     "remainder of october at 200",
			amount:   "200",
			cycle:    types.BillingCycleMonthly,
			start:    date(2024, time.October, 10),
			end:      date(2024, time.October, 31),
			expected: "141.94",
		},
		{
			name:     "full october equals full price",
			amount:   "100",
			cycle:    types.BillingCycleMonthly,
			start:    date(2024, time.October, 1),
			end:      date(2024, time.October, 31),
			expected: "100",
		},
		{
			name:     "full leap year equals full price",
			amount:   "1200",
			cycle:    types.BillingCycleYearly,
			start:    date(2024, time.January, 1),
			end:      date(2024, time.December, 31),
			expected: "1200",
		},
		{
			name:     "full february in leap year",
			amount:   "100",
			cycle:    types.BillingCycleMonthly,
			start:    date(2024, time.February, 1),
			end:      date(2024, time.February, 29),
			expected: "100",
		},
		{
			name:     "single day bills one day not zero",
			amount:   "100",
			cycle:    types.BillingCycleMonthly,
			start:    date(2024, time.October, 5),
			end:      date(2024, time.October, 5),
			expected: "3.23",
		},
		{
			name:     "single day of february in leap year",
			amount:   "290",
			cycle:    types.BillingCycleMonthly,
			start:    date(2024, time.February, 14),
			end:      date(2024, time.February, 14),
			expected: "10",
		},
		{
			name:     "yearly span uses days in year as divisor",
			amount:   "366",
			cycle:    types.BillingCycleYearly,
			start:    date(2024, time.March, 1),
			end:      date(2024, time.March, 31),
			expected: "31",
		},
		{
			name:     "yearly span in non leap year",
			amount:   "365",
			cycle:    types.BillingCycleYearly,
			start:    date(2023, time.March, 1),
			end:      date(2023, time.March, 10),
			expected: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.ProratedCharge(decimal.RequireFromString(tt.amount), tt.cycle, tt.start, tt.end)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestProratedChargeInvalidInput(t *testing.T) {
	calc := NewCalculator()

	t.Run("end before start", func(t *testing.T) {
		_, err := calc.ProratedCharge(
			decimal.NewFromInt(100),
			types.BillingCycleMonthly,
			date(2024, time.October, 10),
			date(2024, time.October, 1),
		)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRange(err))
	})

	t.Run("unknown billing cycle", func(t *testing.T) {
		_, err := calc.ProratedCharge(
			decimal.NewFromInt(100),
			types.BillingCycle("weekly"),
			date(2024, time.October, 1),
			date(2024, time.October, 10),
		)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		got, err := calc.ProratedCharge(
			decimal.NewFromInt(100),
			types.BillingCycleMonthly,
			time.Date(2024, time.October, 1, 23, 59, 0, 0, time.UTC),
			time.Date(2024, time.October, 10, 0, 1, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("32.26").Equal(got))
	})
}

func TestProratedAmount(t *testing.T) {
	calc := NewCalculator()

	t.Run("upgrade mid cycle", func(t *testing.T) {
		got, err := calc.ProratedAmount(ProrationParams{
			OriginalPlan: monthlyPlan("100"),
			NewPlan:      monthlyPlan("200"),
			StartDate:    date(2024, time.October, 1),
			ChangeDate:   date(2024, time.October, 10),
			EndDate:      date(2024, time.October, 31),
		})
		require.NoError(t, err)
		// 141.94 for the new plan minus 32.26 refunded on the old one
		assert.True(t, decimal.RequireFromString("109.68").Equal(got),
			"expected 109.68, got %s", got)
	})

	t.Run("downgrade late in cycle yields credit", func(t *testing.T) {
		got, err := calc.ProratedAmount(ProrationParams{
			OriginalPlan: monthlyPlan("200"),
			NewPlan:      monthlyPlan("100"),
			StartDate:    date(2024, time.October, 1),
			ChangeDate:   date(2024, time.October, 25),
			EndDate:      date(2024, time.October, 31),
		})
		require.NoError(t, err)
		// refund 161.29, charge 22.58
		assert.True(t, decimal.RequireFromString("-138.71").Equal(got),
			"expected -138.71, got %s", got)
		assert.True(t, got.IsNegative())
	})

	t.Run("change on cycle end charges nothing on the new plan", func(t *testing.T) {
		got, err := calc.ProratedAmount(ProrationParams{
			OriginalPlan: monthlyPlan("100"),
			NewPlan:      monthlyPlan("200"),
			StartDate:    date(2024, time.October, 1),
			ChangeDate:   date(2024, time.October, 31),
			EndDate:      date(2024, time.October, 31),
		})
		require.NoError(t, err)
		// net is minus the full refund of the original plan
		assert.True(t, decimal.RequireFromString("-100").Equal(got),
			"expected -100, got %s", got)
	})

	t.Run("change on cycle start refunds one day", func(t *testing.T) {
		got, err := calc.ProratedAmount(ProrationParams{
			OriginalPlan: monthlyPlan("100"),
			NewPlan:      monthlyPlan("200"),
			StartDate:    date(2024, time.October, 1),
			ChangeDate:   date(2024, time.October, 1),
			EndDate:      date(2024, time.October, 31),
		})
		require.NoError(t, err)
		// refund 3.23 for the single day on the old plan, charge the full
		// month on the new one
		assert.True(t, decimal.RequireFromString("196.77").Equal(got),
			"expected 196.77, got %s", got)
	})

	t.Run("yearly plans prorate over the year", func(t *testing.T) {
		got, err := calc.ProratedAmount(ProrationParams{
			OriginalPlan: yearlyPlan("366"),
			NewPlan:      yearlyPlan("732"),
			StartDate:    date(2024, time.January, 1),
			ChangeDate:   date(2024, time.January, 31),
			EndDate:      date(2024, time.December, 31),
		})
		require.NoError(t, err)
		// refund 31 days at 1/day, charge 336 days at 2/day
		assert.True(t, decimal.RequireFromString("641").Equal(got),
			"expected 641, got %s", got)
	})
}

func TestProratedAmountInvalidInput(t *testing.T) {
	calc := NewCalculator()

	base := func() ProrationParams {
		return ProrationParams{
			OriginalPlan: monthlyPlan("100"),
			NewPlan:      monthlyPlan("200"),
			StartDate:    date(2024, time.October, 1),
			ChangeDate:   date(2024, time.October, 10),
			EndDate:      date(2024, time.October, 31),
		}
	}

	t.Run("change before start", func(t *testing.T) {
		params := base()
		params.ChangeDate = date(2024, time.September, 30)
		_, err := calc.ProratedAmount(params)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRange(err))
	})

	t.Run("change after end", func(t *testing.T) {
		params := base()
		params.ChangeDate = date(2024, time.November, 1)
		_, err := calc.ProratedAmount(params)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRange(err))
	})

	t.Run("end before start", func(t *testing.T) {
		params := base()
		params.EndDate = date(2024, time.September, 1)
		_, err := calc.ProratedAmount(params)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRange(err))
	})

	t.Run("mismatched billing cycles", func(t *testing.T) {
		params := base()
		params.NewPlan = yearlyPlan("1200")
		_, err := calc.ProratedAmount(params)
		require.Error(t, err)
		assert.True(t, ierr.IsMismatchedCycle(err))
	})

	t.Run("missing plans", func(t *testing.T) {
		params := base()
		params.NewPlan = nil
		_, err := calc.ProratedAmount(params)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}
