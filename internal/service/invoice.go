package service

import (
	"context"
	"sort"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/email"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// maxConcurrentCustomers bounds the invoice generation fan-out.
const maxConcurrentCustomers = 8

// InvoiceService manages invoices and the cycle-end invoice run.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context) (*dto.ListInvoicesResponse, error)
	GenerateInvoices(ctx context.Context) (*GenerateInvoicesResult, error)
}

// GenerateInvoicesResult summarizes one invoice generation run.
type GenerateInvoicesResult struct {
	InvoicesCreated  int `json:"invoices_created"`
	CustomersSkipped int `json:"customers_skipped"`
	CustomersFailed  int `json:"customers_failed"`
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

// newPendingInvoice builds an unsaved invoice in the generated/pending state.
func newPendingInvoice(customerID string, amount decimal.Decimal, dueDate time.Time) *invoice.Invoice {
	return &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		CustomerID:    customerID,
		Amount:        amount,
		DueDate:       types.DateOnly(dueDate),
		PaymentStatus: types.PaymentStatusPending,
		InvoiceStatus: types.InvoiceStatusGenerated,
		BaseModel:     types.GetDefaultBaseModel(),
	}
}

// CreateInvoice bills the customer's open subscription span from its start
// through today. Re-requesting the same span returns the existing invoice
// instead of creating a duplicate.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := s.CustomerRepo.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	subs, err := s.SubscriptionRepo.ListByCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	open := lo.Filter(subs, func(sub *subscription.Subscription, _ int) bool {
		return sub.Status == types.SubscriptionStatusActive && sub.CancelDate == nil && !sub.IsBilled()
	})
	if len(open) == 0 {
		return nil, ierr.NewError("customer has no active subscription").
			WithHint("The customer has no open subscription span to invoice").
			WithReportableDetails(map[string]any{
				"customer_id": req.CustomerID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	sub := lo.MaxBy(open, func(a, b *subscription.Subscription) bool {
		return a.StartDate.After(b.StartDate)
	})

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	today := types.DateOnly(time.Now())
	through := today
	if through.After(sub.EndDate) {
		through = sub.EndDate
	}
	amount, err := s.Calculator.ProratedCharge(p.Price, p.BillingCycle, sub.StartDate, through)
	if err != nil {
		return nil, err
	}

	dueDate := sub.EndDate.AddDate(0, 0, 1)
	if existing, ok, err := s.findOpenInvoice(ctx, cust.ID, dueDate); err != nil {
		return nil, err
	} else if ok {
		return &dto.InvoiceResponse{Invoice: existing}, nil
	}

	inv := newPendingInvoice(cust.ID, amount, dueDate)
	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	sub.InvoiceID = &inv.ID
	sub.Touch()
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("created on-demand invoice",
		"invoice_id", inv.ID,
		"customer_id", cust.ID,
		"amount", amount,
	)

	if err := s.Email.SendInvoiceGeneratedEmail(ctx, email.InvoiceNotification{
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
	}); err != nil {
		s.Logger.Errorw("failed to send invoice email", "invoice_id", inv.ID, "error", err)
	}

	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context) (*dto.ListInvoicesResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(i *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return &dto.InvoiceResponse{Invoice: i}
	})
	return &dto.ListInvoicesResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// GenerateInvoices bills every subscription span whose cycle has ended and
// that has not been invoiced yet. Spans are grouped per customer so a
// customer with mid-cycle plan changes receives a single invoice for the
// cycle. Customers are processed concurrently; a failure for one customer is
// logged and does not abort the run.
func (s *invoiceService) GenerateInvoices(ctx context.Context) (*GenerateInvoicesResult, error) {
	subs, err := s.SubscriptionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	today := types.DateOnly(time.Now())
	due := lo.Filter(subs, func(sub *subscription.Subscription, _ int) bool {
		// Past-due spans are included in case an earlier run was missed
		return !sub.IsBilled() && !types.DateOnly(sub.EndDate).After(today)
	})
	if len(due) == 0 {
		return &GenerateInvoicesResult{}, nil
	}

	byCustomer := lo.GroupBy(due, func(sub *subscription.Subscription) string {
		return sub.CustomerID
	})

	result := &GenerateInvoicesResult{}
	p := pool.NewWithResults[generateOutcome]().
		WithMaxGoroutines(maxConcurrentCustomers).
		WithContext(ctx)

	for customerID, customerSubs := range byCustomer {
		customerID, customerSubs := customerID, customerSubs
		p.Go(func(ctx context.Context) (generateOutcome, error) {
			outcome, err := s.generateInvoiceForCustomer(ctx, customerID, customerSubs)
			if err != nil {
				s.Logger.Errorw("failed to generate invoice for customer",
					"customer_id", customerID,
					"error", err,
				)
				return outcomeFailed, nil
			}
			return outcome, nil
		})
	}

	outcomes, err := p.Wait()
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		switch o {
		case outcomeCreated:
			result.InvoicesCreated++
		case outcomeSkipped:
			result.CustomersSkipped++
		case outcomeFailed:
			result.CustomersFailed++
		}
	}

	s.Logger.Infow("invoice generation run finished",
		"created", result.InvoicesCreated,
		"skipped", result.CustomersSkipped,
		"failed", result.CustomersFailed,
	)
	return result, nil
}

type generateOutcome int

const (
	outcomeCreated generateOutcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *invoiceService) generateInvoiceForCustomer(ctx context.Context, customerID string, subs []*subscription.Subscription) (generateOutcome, error) {
	cust, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return outcomeFailed, err
	}

	// Oldest span first so consecutive pairs line up as plan changes
	ordered := make([]*subscription.Subscription, len(subs))
	copy(ordered, subs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartDate.Before(ordered[j].StartDate)
	})

	var amount decimal.Decimal
	dueDate := types.DateOnly(ordered[len(ordered)-1].EndDate)

	if len(ordered) == 1 {
		// Uninterrupted cycle: full plan price
		p, err := s.PlanRepo.Get(ctx, ordered[0].PlanID)
		if err != nil {
			return outcomeFailed, err
		}
		amount = p.Price
	} else {
		// One or more mid-cycle plan changes: sum the net prorated amount of
		// each consecutive change
		for i := 0; i < len(ordered)-1; i++ {
			originalPlan, err := s.PlanRepo.Get(ctx, ordered[i].PlanID)
			if err != nil {
				return outcomeFailed, err
			}
			newPlan, err := s.PlanRepo.Get(ctx, ordered[i+1].PlanID)
			if err != nil {
				return outcomeFailed, err
			}

			prorated, err := s.Calculator.ProratedAmount(billing.ProrationParams{
				OriginalPlan: originalPlan,
				NewPlan:      newPlan,
				StartDate:    ordered[i].StartDate,
				ChangeDate:   ordered[i+1].StartDate,
				EndDate:      ordered[i+1].EndDate,
			})
			if err != nil {
				return outcomeFailed, err
			}
			amount = amount.Add(prorated)
		}
	}

	// At most one open invoice per customer per cycle
	if _, exists, err := s.findOpenInvoice(ctx, customerID, dueDate); err != nil {
		return outcomeFailed, err
	} else if exists {
		return outcomeSkipped, nil
	}

	inv := newPendingInvoice(customerID, amount, dueDate)
	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return outcomeFailed, err
	}

	for _, sub := range ordered {
		sub.InvoiceID = &inv.ID
		sub.Touch()
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return outcomeFailed, err
		}
	}

	if err := s.Email.SendInvoiceGeneratedEmail(ctx, email.InvoiceNotification{
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
	}); err != nil {
		s.Logger.Errorw("failed to send invoice email", "invoice_id", inv.ID, "error", err)
	}

	return outcomeCreated, nil
}

// findOpenInvoice looks for an unpaid invoice of the customer with the given
// due date.
func (s *invoiceService) findOpenInvoice(ctx context.Context, customerID string, dueDate time.Time) (*invoice.Invoice, bool, error) {
	invoices, err := s.InvoiceRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, false, err
	}

	existing, found := lo.Find(invoices, func(i *invoice.Invoice) bool {
		return !i.IsPaid() && types.SameDay(i.DueDate, dueDate)
	})
	return existing, found, nil
}
