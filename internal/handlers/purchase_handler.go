package handlers

import (
	"log/slog"
	"net/http"

	"ticket-storefront/internal/services"
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type PurchaseHandler struct {
	app             *pocketbase.PocketBase
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(app *pocketbase.PocketBase, purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		app:             app,
		purchaseService: purchaseService,
	}
}

// GetEventStatus - Buy-dialog data source: evaluator facts plus per-tier
// availability.
func (h *PurchaseHandler) GetEventStatus(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")
	if eventID == "" {
		return apis.NewBadRequestError("Event ID required", nil)
	}

	availability, err := h.purchaseService.Status(e.Request.Context(), eventID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, availability)
}

// Purchase - Buy a ticket for the chosen tier
func (h *PurchaseHandler) Purchase(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	eventID := e.Request.PathValue("eventId")

	var req struct {
		TierPolicy string `json:"tier_policy"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.TierPolicy == "" {
		req.TierPolicy = models.FreeAdmission
	}

	ticket, err := h.purchaseService.Purchase(e.Request.Context(), e.Auth.Id, eventID, req.TierPolicy)
	if err != nil {
		slog.Warn("purchase blocked", "event_id", eventID, "user_id", e.Auth.Id, "error", err)
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id":  ticket.ID,
		"reference":  ticket.Reference,
		"tier":       ticket.TierPolicy,
		"total_paid": ticket.TotalPaid,
	})
}
