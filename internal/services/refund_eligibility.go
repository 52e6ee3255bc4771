package services

import (
	"fmt"
	"time"

	"ticket-storefront/internal/status"
)

type EligibilityVerdict string

const (
	VerdictTooEarly EligibilityVerdict = "too_early"
	VerdictEligible EligibilityVerdict = "eligible"
	VerdictExpired  EligibilityVerdict = "expired"
)

type Eligibility struct {
	Verdict EligibilityVerdict `json:"verdict"`
	// BoundaryDate is the day requests open when the verdict is TooEarly,
	// and the last accepted day while the window is still open. An expired
	// window has no boundary, so the field is nil and omitted.
	BoundaryDate *time.Time `json:"boundary_date,omitempty"`
}

// RefundEligibilityCalculator evaluates the day-granularity refund window
// [purchasedAt+openAfter, purchasedAt+closeAfter], inclusive of both ends.
type RefundEligibilityCalculator struct {
	openAfter  int
	closeAfter int
}

func NewRefundEligibilityCalculator(openAfter, closeAfter int) *RefundEligibilityCalculator {
	return &RefundEligibilityCalculator{openAfter: openAfter, closeAfter: closeAfter}
}

func (c *RefundEligibilityCalculator) Evaluate(purchasedAt, now time.Time) Eligibility {
	days := int(now.Sub(purchasedAt).Hours() / 24)
	switch {
	case days < c.openAfter:
		opens := purchasedAt.AddDate(0, 0, c.openAfter)
		return Eligibility{Verdict: VerdictTooEarly, BoundaryDate: &opens}
	case days <= c.closeAfter:
		closes := purchasedAt.AddDate(0, 0, c.closeAfter)
		return Eligibility{Verdict: VerdictEligible, BoundaryDate: &closes}
	}
	return Eligibility{Verdict: VerdictExpired}
}

// NotEligibleError carries the verdict and boundary date so callers can show
// "eligible from/until X". It matches status.ErrNotEligible with errors.Is.
type NotEligibleError struct {
	Verdict      EligibilityVerdict
	BoundaryDate *time.Time
}

func (e *NotEligibleError) Error() string {
	if e.Verdict == VerdictTooEarly {
		return fmt.Sprintf("refund requests open on %s", e.BoundaryDate.Format("2006-01-02"))
	}
	return "refund window permanently closed"
}

func (e *NotEligibleError) Is(target error) bool {
	return target == status.ErrNotEligible
}
