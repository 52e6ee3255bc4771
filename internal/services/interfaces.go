package services

import (
	"context"
	"time"

	"ticket-storefront/models"
)

// Clock abstracts time.Now so every decision can be evaluated against an
// explicit instant in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// EventReader loads the event snapshot a purchase decision is made against.
type EventReader interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

type TicketReader interface {
	GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error)
	GetTicketByReference(ctx context.Context, reference string) (*models.Ticket, error)
}

type TicketWriter interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) (string, error)
}

// CounterWriter performs the atomic increment-if-below-max on the event and
// tier sold counters. A nil error means the slot was claimed; losing the
// race returns status.ErrSoldOut or status.ErrTierSoldOut so the caller's
// error path is identical to a pre-check block.
type CounterWriter interface {
	TryIncrement(ctx context.Context, event *models.Event, tierPolicy string) error
}

// RefundStore persists refund requests. CreateRefund fails with
// status.ErrOpenRefundExists when the ticket already has an open request.
// CasTransition atomically moves a request from expected to next and reports
// whether this caller won; the store releases the per-ticket open guard when
// next is terminal.
type RefundStore interface {
	CreateRefund(ctx context.Context, req *models.RefundRequest) (string, error)
	GetRefund(ctx context.Context, refundID string) (*models.RefundRequest, error)
	GetRefundByTicketReference(ctx context.Context, reference string) (*models.RefundRequest, error)
	CasTransition(ctx context.Context, refundID string, expected, next models.RefundStatus, extra map[string]any) (bool, error)
}

type NotificationKind string

const (
	NotifyRefundCreated  NotificationKind = "refund_created"
	NotifyRefundApproved NotificationKind = "refund_approved"
	NotifyRefundDenied   NotificationKind = "refund_denied"
)

// Notifier delivers best-effort push notifications. Implementations must not
// block the caller and must never surface delivery failures.
type Notifier interface {
	Notify(ctx context.Context, kind NotificationKind, ownerID string, payload map[string]any)
}
