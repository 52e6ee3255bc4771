package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/monitoring"

	"github.com/shopspring/decimal"
)

var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

// RefundService owns the refund request lifecycle: creation behind the
// eligibility check and the staff transitions. Every transition is a
// compare-and-swap at the store, so concurrent staff actions on the same
// request have exactly one winner.
type RefundService struct {
	tickets     TicketReader
	store       RefundStore
	notifier    Notifier
	eligibility *RefundEligibilityCalculator
	clock       Clock
	fee         decimal.Decimal
}

func NewRefundService(tickets TicketReader, store RefundStore, notifier Notifier, eligibility *RefundEligibilityCalculator, clock Clock, fee decimal.Decimal) *RefundService {
	return &RefundService{
		tickets:     tickets,
		store:       store,
		notifier:    notifier,
		eligibility: eligibility,
		clock:       clock,
		fee:         fee,
	}
}

type CreateRefundInput struct {
	TicketID     string               `json:"ticket_id"`
	Reason       models.RefundReason  `json:"reason"`
	CustomReason string               `json:"custom_reason"`
	Note         string               `json:"note"`
	Payout       models.PayoutAccount `json:"payout"`
}

func (in *CreateRefundInput) validate() error {
	if in.TicketID == "" {
		return fmt.Errorf("%w: ticket_id is required", status.ErrValidation)
	}
	if !in.Reason.Valid() {
		return fmt.Errorf("%w: unknown refund reason %q", status.ErrValidation, in.Reason)
	}
	if in.Reason == models.ReasonOther && in.CustomReason == "" {
		return fmt.Errorf("%w: custom_reason is required when reason is other", status.ErrValidation)
	}
	if !accountNumberPattern.MatchString(in.Payout.AccountNumber) {
		return fmt.Errorf("%w: account number must be 10 digits", status.ErrValidation)
	}
	if in.Payout.Bank == "" || in.Payout.AccountName == "" {
		return fmt.Errorf("%w: payout bank and account name are required", status.ErrValidation)
	}
	return nil
}

// RefundableAmount is totalPaid minus the fixed nonrefundable fee. No
// clamping: a negative result is reported as-is and rejected in Create.
func (s *RefundService) RefundableAmount(totalPaid decimal.Decimal) decimal.Decimal {
	return totalPaid.Sub(s.fee)
}

// Eligibility evaluates the refund window for a ticket without creating
// anything (the refund form's pre-check).
func (s *RefundService) Eligibility(ctx context.Context, ownerID, ticketID string) (Eligibility, error) {
	ticket, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return Eligibility{}, err
	}
	if ticket.OwnerID != ownerID {
		return Eligibility{}, status.ErrNotTicketOwner
	}
	return s.eligibility.Evaluate(ticket.PurchasedAt, s.clock.Now()), nil
}

func (s *RefundService) Create(ctx context.Context, ownerID string, in CreateRefundInput) (*models.RefundRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetTicket(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != ownerID {
		return nil, status.ErrNotTicketOwner
	}

	now := s.clock.Now()
	elig := s.eligibility.Evaluate(ticket.PurchasedAt, now)
	if elig.Verdict != VerdictEligible {
		return nil, &NotEligibleError{Verdict: elig.Verdict, BoundaryDate: elig.BoundaryDate}
	}

	amount := s.RefundableAmount(ticket.TotalPaid)
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: ticket value %s does not cover the %s fee",
			status.ErrValidation, ticket.TotalPaid, s.fee)
	}

	req := &models.RefundRequest{
		TicketID:         ticket.ID,
		TicketReference:  ticket.Reference,
		EventID:          ticket.EventID,
		OwnerID:          ticket.OwnerID,
		RefundableAmount: amount,
		Reason:           in.Reason,
		CustomReason:     in.CustomReason,
		Note:             in.Note,
		Payout:           in.Payout,
		Status:           models.RefundRequested,
		RequestedAt:      now,
	}

	id, err := s.store.CreateRefund(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id

	monitoring.TrackRefundTransition("none", string(models.RefundRequested))
	s.notifier.Notify(ctx, NotifyRefundCreated, req.OwnerID, map[string]any{
		"refund_id":         req.ID,
		"ticket_reference":  req.TicketReference,
		"refundable_amount": req.RefundableAmount,
	})

	slog.Info("refund request created", "refund_id", req.ID, "ticket", req.TicketReference)

	return req, nil
}

// AdvanceToProcessing moves Requested to Processing. Calling it on a request
// already in Processing is a no-op.
func (s *RefundService) AdvanceToProcessing(ctx context.Context, refundID string) error {
	cur, err := s.store.GetRefund(ctx, refundID)
	if err != nil {
		return err
	}
	if cur.Status == models.RefundProcessing {
		return nil
	}
	if cur.Status != models.RefundRequested {
		return fmt.Errorf("%w: %s is %s", status.ErrInvalidTransition, refundID, cur.Status)
	}

	won, err := s.store.CasTransition(ctx, refundID, models.RefundRequested, models.RefundProcessing, nil)
	if err != nil {
		return err
	}
	if !won {
		// Re-read so a racing AdvanceToProcessing still reports success.
		cur, err = s.store.GetRefund(ctx, refundID)
		if err != nil {
			return err
		}
		if cur.Status == models.RefundProcessing {
			return nil
		}
		return fmt.Errorf("%w: %s is %s", status.ErrInvalidTransition, refundID, cur.Status)
	}

	monitoring.TrackRefundTransition(string(models.RefundRequested), string(models.RefundProcessing))
	return nil
}

// Approve moves an open request to Refunded. The payout itself belongs to
// the payment rail; this only records the terminal state.
func (s *RefundService) Approve(ctx context.Context, refundID string) (*models.RefundRequest, error) {
	req, err := s.transitionToTerminal(ctx, refundID, models.RefundRefunded, nil)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, NotifyRefundApproved, req.OwnerID, map[string]any{
		"refund_id":         req.ID,
		"ticket_reference":  req.TicketReference,
		"refundable_amount": req.RefundableAmount,
	})
	return req, nil
}

func (s *RefundService) Deny(ctx context.Context, refundID, reason string) (*models.RefundRequest, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a denial reason is required", status.ErrValidation)
	}

	req, err := s.transitionToTerminal(ctx, refundID, models.RefundDenied, map[string]any{
		"status_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	req.StatusReason = reason

	s.notifier.Notify(ctx, NotifyRefundDenied, req.OwnerID, map[string]any{
		"refund_id":        req.ID,
		"ticket_reference": req.TicketReference,
		"status_reason":    reason,
	})
	return req, nil
}

func (s *RefundService) transitionToTerminal(ctx context.Context, refundID string, next models.RefundStatus, extra map[string]any) (*models.RefundRequest, error) {
	cur, err := s.store.GetRefund(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if !cur.Status.Open() {
		return nil, fmt.Errorf("%w: %s is already %s", status.ErrInvalidTransition, refundID, cur.Status)
	}

	won, err := s.store.CasTransition(ctx, refundID, cur.Status, next, extra)
	if err != nil {
		return nil, err
	}
	if !won {
		cur2, err := s.store.GetRefund(ctx, refundID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s is already %s", status.ErrInvalidTransition, refundID, cur2.Status)
	}

	monitoring.TrackRefundTransition(string(cur.Status), string(next))
	slog.Info("refund request transitioned", "refund_id", refundID, "from", cur.Status, "to", next)

	cur.Status = next
	return cur, nil
}

// Track looks a request up by id for the owner (or staff) view.
func (s *RefundService) Track(ctx context.Context, refundID string) (*models.RefundRequest, error) {
	return s.store.GetRefund(ctx, refundID)
}

// TrackByReference serves the refund-track page, which only knows the
// ticket reference printed on the ticket.
func (s *RefundService) TrackByReference(ctx context.Context, reference string) (*models.RefundRequest, error) {
	return s.store.GetRefundByTicketReference(ctx, reference)
}
