// Package billing implements the proration and billing-cycle engine. It is
// pure computation: no I/O, no shared state, safe for concurrent use.
package billing

import (
	"time"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator performs billing cycle and proration calculations.
// It's kept behind an interface to allow different calculation strategies or
// easier testing.
type Calculator interface {
	// CycleEnd returns the date the billing cycle starting at date closes:
	// exactly one calendar month or year later, clamped to valid month ends.
	CycleEnd(date time.Time, cycle types.BillingCycle) time.Time

	// ProratedCharge returns the portion of fullAmount attributable to the
	// inclusive span [startDate, endDate], using the actual number of days in
	// the calendar month or year containing startDate as the divisor.
	ProratedCharge(fullAmount decimal.Decimal, cycle types.BillingCycle, startDate, endDate time.Time) (decimal.Decimal, error)

	// ProratedAmount returns the net amount to charge (positive) or credit
	// (negative) for switching plans mid-cycle.
	ProratedAmount(params ProrationParams) (decimal.Decimal, error)
}

// ProrationParams holds all necessary input for a plan-change proration.
type ProrationParams struct {
	OriginalPlan *plan.Plan // Plan the customer is leaving
	NewPlan      *plan.Plan // Plan the customer is moving to
	StartDate    time.Time  // Start of the current billing cycle
	ChangeDate   time.Time  // Effective date of the change
	EndDate      time.Time  // End of the current billing cycle
}

// NewCalculator creates the day-based proration calculator.
func NewCalculator() Calculator {
	return &dayCalculator{}
}

// dayCalculator implements day-count proration over calendar dates.
// Earlier revisions of this logic approximated months as 30 days and years as
// 365 days, which misprices the last days of longer months and all of leap
// years; all arithmetic here is calendar-correct.
type dayCalculator struct{}

func (c *dayCalculator) CycleEnd(date time.Time, cycle types.BillingCycle) time.Time {
	return types.NextBillingDate(types.DateOnly(date), cycle)
}

func (c *dayCalculator) ProratedCharge(fullAmount decimal.Decimal, cycle types.BillingCycle, startDate, endDate time.Time) (decimal.Decimal, error) {
	if err := cycle.Validate(); err != nil {
		return decimal.Zero, err
	}

	start := types.DateOnly(startDate)
	end := types.DateOnly(endDate)

	if end.Before(start) {
		return decimal.Zero, ierr.NewError("end date cannot be before start date").
			WithHint("The billing span end date must not precede its start date").
			WithReportableDetails(map[string]any{
				"start_date": start.Format(time.DateOnly),
				"end_date":   end.Format(time.DateOnly),
			}).
			Mark(ierr.ErrInvalidRange)
	}

	// Inclusive of both endpoints: a single-day span is one day of usage,
	// never zero.
	totalDays := types.DaysBetween(start, end) + 1

	billingPeriodDays := types.DaysInMonth(start)
	if cycle == types.BillingCycleYearly {
		billingPeriodDays = types.DaysInYear(start)
	}

	dailyRate := fullAmount.Div(decimal.NewFromInt(int64(billingPeriodDays)))

	return round2(dailyRate.Mul(decimal.NewFromInt(int64(totalDays)))), nil
}

func (c *dayCalculator) ProratedAmount(params ProrationParams) (decimal.Decimal, error) {
	if err := params.Validate(); err != nil {
		return decimal.Zero, err
	}

	cycle := params.OriginalPlan.BillingCycle
	start := types.DateOnly(params.StartDate)
	change := types.DateOnly(params.ChangeDate)
	end := types.DateOnly(params.EndDate)

	// The change day belongs to the original plan's billed span.
	refundPortion, err := c.ProratedCharge(params.OriginalPlan.Price, cycle, start, change)
	if err != nil {
		return decimal.Zero, err
	}

	// A change landing exactly on the cycle boundary leaves no time to bill
	// on the new plan.
	chargePortion := decimal.Zero
	if !change.Equal(end) {
		chargePortion, err = c.ProratedCharge(params.NewPlan.Price, cycle, change, end)
		if err != nil {
			return decimal.Zero, err
		}
	}

	// Negative results signify a net credit, notably on downgrades.
	return chargePortion.Sub(refundPortion), nil
}

// Validate enforces the date-range and same-billing-cycle invariants before
// any computation runs.
func (p ProrationParams) Validate() error {
	if p.OriginalPlan == nil || p.NewPlan == nil {
		return ierr.NewError("both original and new plans are required").
			WithHint("Plan change proration requires the original and new plan").
			Mark(ierr.ErrValidation)
	}

	start := types.DateOnly(p.StartDate)
	change := types.DateOnly(p.ChangeDate)
	end := types.DateOnly(p.EndDate)

	if end.Before(start) || change.Before(start) || change.After(end) {
		return ierr.NewError("change date must fall within the billing cycle").
			WithHint("The change date must be between the cycle start and end dates").
			WithReportableDetails(map[string]any{
				"start_date":  start.Format(time.DateOnly),
				"change_date": change.Format(time.DateOnly),
				"end_date":    end.Format(time.DateOnly),
			}).
			Mark(ierr.ErrInvalidRange)
	}

	if p.OriginalPlan.BillingCycle != p.NewPlan.BillingCycle {
		return ierr.NewError("plans must have the same billing cycle").
			WithHint("Plan changes are only supported between plans on the same billing cycle").
			WithReportableDetails(map[string]any{
				"original_cycle": p.OriginalPlan.BillingCycle,
				"new_cycle":      p.NewPlan.BillingCycle,
			}).
			Mark(ierr.ErrMismatchedCycle)
	}

	return p.OriginalPlan.BillingCycle.Validate()
}

// round2 rounds a currency amount to the cent, half away from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
