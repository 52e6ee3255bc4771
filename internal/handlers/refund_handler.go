package handlers

import (
	"errors"
	"net/http"

	"ticket-storefront/internal/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type RefundHandler struct {
	app           *pocketbase.PocketBase
	refundService *services.RefundService
}

func NewRefundHandler(app *pocketbase.PocketBase, refundService *services.RefundService) *RefundHandler {
	return &RefundHandler{
		app:           app,
		refundService: refundService,
	}
}

// GetEligibility - Refund-form pre-check: verdict and boundary date for a
// ticket.
func (h *RefundHandler) GetEligibility(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	ticketID := e.Request.PathValue("ticketId")
	eligibility, err := h.refundService.Eligibility(e.Request.Context(), e.Auth.Id, ticketID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, eligibility)
}

// CreateRefund - Submit a refund request for an owned ticket
func (h *RefundHandler) CreateRefund(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.CreateRefundInput
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	refund, err := h.refundService.Create(e.Request.Context(), e.Auth.Id, req)
	if err != nil {
		var notEligible *services.NotEligibleError
		if errors.As(err, &notEligible) {
			// Carry the boundary so the form can show "eligible from/until X".
			body := map[string]any{
				"error":   "not_eligible",
				"verdict": notEligible.Verdict,
			}
			if notEligible.BoundaryDate != nil {
				body["boundary_date"] = notEligible.BoundaryDate
			}
			return e.JSON(http.StatusConflict, body)
		}
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"refund_id":         refund.ID,
		"status":            refund.Status,
		"refundable_amount": refund.RefundableAmount,
		"requested_at":      refund.RequestedAt,
	})
}

// GetRefund - Refund detail for the owner (or staff)
func (h *RefundHandler) GetRefund(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	refundID := e.Request.PathValue("refundId")
	refund, err := h.refundService.Track(e.Request.Context(), refundID)
	if err != nil {
		return toAPIError(err)
	}

	if refund.OwnerID != e.Auth.Id && !e.Auth.IsSuperuser() {
		return apis.NewForbiddenError("Not your refund request", nil)
	}

	return e.JSON(http.StatusOK, refund)
}

// TrackByReference - Refund-track page: status lookup by the reference
// printed on the ticket. Returns only the tracking fields.
func (h *RefundHandler) TrackByReference(e *core.RequestEvent) error {
	reference := e.Request.URL.Query().Get("reference")
	if reference == "" {
		return apis.NewBadRequestError("Ticket reference required", nil)
	}

	refund, err := h.refundService.TrackByReference(e.Request.Context(), reference)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_reference":  refund.TicketReference,
		"status":            refund.Status,
		"status_reason":     refund.StatusReason,
		"refundable_amount": refund.RefundableAmount,
		"requested_at":      refund.RequestedAt,
	})
}
