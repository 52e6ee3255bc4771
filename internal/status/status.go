package status

import "errors"

var (
	ErrNotEligible       = errors.New("refund: ticket outside the eligibility window")
	ErrOpenRefundExists  = errors.New("refund: ticket already has an open refund request")
	ErrInvalidTransition = errors.New("refund: transition not permitted from current status")
	ErrRefundNotFound    = errors.New("refund: refund request not found")

	ErrEventPassed = errors.New("purchase: event already passed")
	ErrSoldOut     = errors.New("purchase: event sold out")
	ErrSaleEnded   = errors.New("purchase: ticket sale ended")
	ErrTierSoldOut = errors.New("purchase: tier sold out")
	ErrUnknownTier = errors.New("purchase: unknown ticket tier")

	ErrTicketNotFound = errors.New("ticket: ticket not found")
	ErrEventNotFound  = errors.New("event: event not found")

	ErrValidation     = errors.New("validation: invalid input")
	ErrNotTicketOwner = errors.New("ticket: caller does not own this ticket")
)
