package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RefundStore persists refund requests as PocketBase records. Status
// transitions run as conditional UPDATEs so the database, not the process,
// decides which of two concurrent staff actions wins. The one-open-request
// rule is a Redis SET NX guard per ticket; the records stay the authority,
// so a guard that disagrees with them in either direction (flushed Redis,
// stale key left by a crash or a failed release) is corrected on create.
type RefundStore struct {
	app   core.App
	redis *redis.Client
}

func NewRefundStore(app core.App, redisClient *redis.Client) *RefundStore {
	return &RefundStore{app: app, redis: redisClient}
}

func guardKey(ticketID string) string {
	return fmt.Sprintf("refund:open:%s", ticketID)
}

func (s *RefundStore) CreateRefund(ctx context.Context, req *models.RefundRequest) (string, error) {
	err := s.claimOpenGuard(ctx, req.TicketID, func() bool {
		existing, _ := s.app.FindFirstRecordByFilter("refund_requests",
			"ticket = {:ticket} && (status = 'requested' || status = 'processing')",
			dbx.Params{"ticket": req.TicketID})
		return existing != nil
	})
	if err != nil {
		return "", err
	}

	collection, err := s.app.FindCollectionByNameOrId("refund_requests")
	if err != nil {
		s.releaseGuard(ctx, req.TicketID)
		return "", fmt.Errorf("refund_requests collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("ticket", req.TicketID)
	record.Set("ticket_reference", req.TicketReference)
	record.Set("event", req.EventID)
	record.Set("owner", req.OwnerID)
	record.Set("refundable_amount", req.RefundableAmount.String())
	record.Set("reason", string(req.Reason))
	record.Set("custom_reason", req.CustomReason)
	record.Set("note", req.Note)
	record.Set("payout_bank", req.Payout.Bank)
	record.Set("payout_account_number", req.Payout.AccountNumber)
	record.Set("payout_account_name", req.Payout.AccountName)
	record.Set("status", string(models.RefundRequested))
	record.Set("requested_at", req.RequestedAt)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		s.releaseGuard(ctx, req.TicketID)
		return "", fmt.Errorf("save refund request: %w", err)
	}

	return record.Id, nil
}

func (s *RefundStore) GetRefund(ctx context.Context, refundID string) (*models.RefundRequest, error) {
	record, err := s.app.FindRecordById("refund_requests", refundID)
	if err != nil {
		return nil, status.ErrRefundNotFound
	}
	return recordToRefund(record)
}

func (s *RefundStore) GetRefundByTicketReference(ctx context.Context, reference string) (*models.RefundRequest, error) {
	records, err := s.app.FindRecordsByFilter("refund_requests",
		"ticket_reference = {:ref}", "-requested_at", 1, 0,
		dbx.Params{"ref": reference})
	if err != nil || len(records) == 0 {
		return nil, status.ErrRefundNotFound
	}
	return recordToRefund(records[0])
}

// CasTransition updates the request's status only when it still has the
// expected one. Exactly one of any set of concurrent callers observes true.
// Terminal transitions release the ticket's open-request guard.
func (s *RefundStore) CasTransition(ctx context.Context, refundID string, expected, next models.RefundStatus, extra map[string]any) (bool, error) {
	cols := dbx.Params{
		"status":  string(next),
		"updated": time.Now().UTC().Format(types.DefaultDateLayout),
	}
	for k, v := range extra {
		cols[k] = v
	}

	result, err := s.app.DB().Update("refund_requests", cols,
		dbx.HashExp{"id": refundID, "status": string(expected)}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return false, fmt.Errorf("refund transition update: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("refund transition result: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if next.Terminal() {
		record, err := s.app.FindRecordById("refund_requests", refundID)
		if err == nil {
			s.releaseGuard(ctx, record.GetString("ticket"))
		}
	}

	return true, nil
}

// claimOpenGuard claims the per-ticket open-request guard. hasOpen consults
// the durable records, which stay the authority: when the key exists but no
// open record backs it — a crash before the save, or a release Del that
// never reached Redis — the stale key is reset and reclaimed, so a ticket
// is never permanently locked out of refunds.
func (s *RefundStore) claimOpenGuard(ctx context.Context, ticketID string, hasOpen func() bool) error {
	claimed, err := s.redis.SetNX(ctx, guardKey(ticketID), "open", 0).Result()
	if err != nil {
		return fmt.Errorf("claim refund guard: %w", err)
	}

	if hasOpen() {
		// Leave the key in place: it correctly marks the open request.
		return status.ErrOpenRefundExists
	}
	if claimed {
		return nil
	}

	// Stale key. Reset and reclaim through SET NX so two concurrent
	// creators still get exactly one winner.
	slog.Warn("stale refund guard reset", "ticket", ticketID)
	if err := s.redis.Del(ctx, guardKey(ticketID)).Err(); err != nil {
		return fmt.Errorf("reset stale refund guard: %w", err)
	}
	claimed, err = s.redis.SetNX(ctx, guardKey(ticketID), "open", 0).Result()
	if err != nil {
		return fmt.Errorf("claim refund guard: %w", err)
	}
	if !claimed {
		return status.ErrOpenRefundExists
	}
	return nil
}

func (s *RefundStore) releaseGuard(ctx context.Context, ticketID string) {
	if err := s.redis.Del(ctx, guardKey(ticketID)).Err(); err != nil {
		slog.Warn("refund guard release failed", "ticket", ticketID, "error", err)
	}
}

func recordToRefund(record *core.Record) (*models.RefundRequest, error) {
	amount, err := decimal.NewFromString(record.GetString("refundable_amount"))
	if err != nil {
		return nil, fmt.Errorf("decode refundable amount: %w", err)
	}

	return &models.RefundRequest{
		ID:               record.Id,
		TicketID:         record.GetString("ticket"),
		TicketReference:  record.GetString("ticket_reference"),
		EventID:          record.GetString("event"),
		OwnerID:          record.GetString("owner"),
		RefundableAmount: amount,
		Reason:           models.RefundReason(record.GetString("reason")),
		CustomReason:     record.GetString("custom_reason"),
		Note:             record.GetString("note"),
		Payout: models.PayoutAccount{
			Bank:          record.GetString("payout_bank"),
			AccountNumber: record.GetString("payout_account_number"),
			AccountName:   record.GetString("payout_account_name"),
		},
		Status:       models.RefundStatus(record.GetString("status")),
		StatusReason: record.GetString("status_reason"),
		RequestedAt:  record.GetDateTime("requested_at").Time(),
	}, nil
}
