package services

import (
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

type BlockReason string

const (
	BlockNone        BlockReason = ""
	BlockPassed      BlockReason = "passed"
	BlockSoldOut     BlockReason = "sold_out"
	BlockSaleEnded   BlockReason = "sale_ended"
	BlockTierSoldOut BlockReason = "tier_sold_out"
)

type PurchaseDecision struct {
	Allowed bool        `json:"allowed"`
	Reason  BlockReason `json:"block_reason,omitempty"`
}

// PurchaseGate decides whether a ticket can still be bought. The decision is
// advisory: it works on a snapshot, and the atomic counter write re-checks
// capacity at the moment of the sale.
type PurchaseGate struct {
	evaluator *EventStatusEvaluator
}

func NewPurchaseGate(evaluator *EventStatusEvaluator) *PurchaseGate {
	return &PurchaseGate{evaluator: evaluator}
}

// Decide applies the block reasons in precedence order. A passed event can
// never be purchased, regardless of any other flag.
func (g *PurchaseGate) Decide(event *models.Event, tierPolicy string, now time.Time) (PurchaseDecision, error) {
	tier, ok := event.FindTier(tierPolicy)
	if !ok {
		return PurchaseDecision{}, status.ErrUnknownTier
	}

	st := g.evaluator.Evaluate(event, now)
	switch {
	case st.IsPassed:
		return PurchaseDecision{Reason: BlockPassed}, nil
	case st.IsSoldOut:
		return PurchaseDecision{Reason: BlockSoldOut}, nil
	case st.IsSaleEnded:
		return PurchaseDecision{Reason: BlockSaleEnded}, nil
	case tier.Stock != nil && tier.Stock.Sold >= tier.Stock.Max:
		return PurchaseDecision{Reason: BlockTierSoldOut}, nil
	}
	return PurchaseDecision{Allowed: true}, nil
}

// BlockError maps a blocking decision to its sentinel error.
func (d PurchaseDecision) BlockError() error {
	switch d.Reason {
	case BlockPassed:
		return status.ErrEventPassed
	case BlockSoldOut:
		return status.ErrSoldOut
	case BlockSaleEnded:
		return status.ErrSaleEnded
	case BlockTierSoldOut:
		return status.ErrTierSoldOut
	}
	return nil
}
