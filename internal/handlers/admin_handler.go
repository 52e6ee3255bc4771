package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"ticket-storefront/config"
	"ticket-storefront/internal/services"
	"ticket-storefront/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	app           *pocketbase.PocketBase
	refundService *services.RefundService
	cfg           *config.Config
}

func NewAdminHandler(app *pocketbase.PocketBase, refundService *services.RefundService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		app:           app,
		refundService: refundService,
		cfg:           cfg,
	}
}

func (h *AdminHandler) requireStaff(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if !e.Auth.IsSuperuser() {
		return apis.NewForbiddenError("Staff access required", nil)
	}
	return nil
}

// AdvanceToProcessing - Requested -> Processing (idempotent when already
// processing)
func (h *AdminHandler) AdvanceToProcessing(e *core.RequestEvent) error {
	if err := h.requireStaff(e); err != nil {
		return err
	}

	refundID := e.Request.PathValue("refundId")
	if err := h.refundService.AdvanceToProcessing(e.Request.Context(), refundID); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"refund_id": refundID, "status": "processing"})
}

// Approve - Open request -> Refunded
func (h *AdminHandler) Approve(e *core.RequestEvent) error {
	if err := h.requireStaff(e); err != nil {
		return err
	}

	refundID := e.Request.PathValue("refundId")
	refund, err := h.refundService.Approve(e.Request.Context(), refundID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"refund_id":         refund.ID,
		"status":            refund.Status,
		"refundable_amount": refund.RefundableAmount,
	})
}

// Deny - Open request -> Denied, reason required
func (h *AdminHandler) Deny(e *core.RequestEvent) error {
	if err := h.requireStaff(e); err != nil {
		return err
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	refundID := e.Request.PathValue("refundId")
	refund, err := h.refundService.Deny(e.Request.Context(), refundID, req.Reason)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"refund_id":     refund.ID,
		"status":        refund.Status,
		"status_reason": refund.StatusReason,
	})
}

// ConfirmPayout - Payout-rail callback. The rail signs the body with the
// shared key and presents the webhook secret; a confirmed payout approves
// the referenced request.
func (h *AdminHandler) ConfirmPayout(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	secret := e.Request.Header.Get("X-Webhook-Secret")
	if !utils.CompareSecretHash(h.cfg.PayoutWebhookSecretHash, secret) {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	signature := e.Request.Header.Get("X-Signature")
	if !utils.VerifyHMAC(body, []byte(h.cfg.PayoutWebhookKey), signature) {
		slog.Warn("payout webhook signature mismatch")
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		RefundID string `json:"refund_id"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.Status != "success" {
		slog.Info("payout confirmation ignored", "refund_id", req.RefundID, "status", req.Status)
		return e.JSON(http.StatusOK, map[string]any{"acknowledged": true})
	}

	refund, err := h.refundService.Approve(e.Request.Context(), req.RefundID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"refund_id": refund.ID,
		"status":    refund.Status,
	})
}
