package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	EventID     string          `json:"event_id"`
	OwnerID     string          `json:"owner_id"`
	TierPolicy  string          `json:"tier_policy"`
	Price       decimal.Decimal `json:"price"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	PurchasedAt time.Time       `json:"purchased_at"`
	Verified    bool            `json:"verified"`
}
