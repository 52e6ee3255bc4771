package handlers

import (
	"errors"
	"net/http"

	"ticket-storefront/internal/status"

	"github.com/pocketbase/pocketbase/apis"
)

// toAPIError maps the service error taxonomy onto HTTP. Business-state
// conflicts (blocked purchase, wrong-state transition, duplicate open
// request) are 409 so that losing a race and failing a pre-check look the
// same to the caller.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, status.ErrValidation):
		return apis.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, status.ErrNotTicketOwner):
		return apis.NewForbiddenError("Ticket belongs to another account", nil)
	case errors.Is(err, status.ErrTicketNotFound),
		errors.Is(err, status.ErrEventNotFound),
		errors.Is(err, status.ErrRefundNotFound):
		return apis.NewNotFoundError(err.Error(), nil)
	case errors.Is(err, status.ErrUnknownTier):
		return apis.NewBadRequestError("Unknown ticket tier", nil)
	case errors.Is(err, status.ErrOpenRefundExists),
		errors.Is(err, status.ErrInvalidTransition):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, status.ErrEventPassed),
		errors.Is(err, status.ErrSoldOut),
		errors.Is(err, status.ErrSaleEnded),
		errors.Is(err, status.ErrTierSoldOut):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	}
	return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", err)
}
