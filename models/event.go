package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FreeAdmission is the tier policy used when an event sells a single
// untiered (usually free) admission.
const FreeAdmission = "free-admission"

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	BookerID    string    `json:"booker_id"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at,omitempty"` // zero value means no configured end
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`

	Capacity   *Capacity   `json:"capacity,omitempty"`
	SaleWindow *SaleWindow `json:"sale_window,omitempty"`
	Tiers      []Tier      `json:"tiers,omitempty"`
}

type Capacity struct {
	Enabled bool `json:"enabled"`
	Max     int  `json:"max"`
	Sold    int  `json:"sold"`
}

type SaleWindow struct {
	Enabled bool      `json:"enabled"`
	StopAt  time.Time `json:"stop_at"`
}

type Tier struct {
	Policy string          `json:"policy"`
	Price  decimal.Decimal `json:"price"`
	Stock  *TierStock      `json:"stock,omitempty"`
}

type TierStock struct {
	Max  int `json:"max"`
	Sold int `json:"sold"`
}

// FindTier returns the tier matching the given policy. Events without tiers
// expose a single zero-priced FreeAdmission tier.
func (e *Event) FindTier(policy string) (*Tier, bool) {
	if len(e.Tiers) == 0 && policy == FreeAdmission {
		return &Tier{Policy: FreeAdmission, Price: decimal.Zero}, true
	}
	for i := range e.Tiers {
		if e.Tiers[i].Policy == policy {
			return &e.Tiers[i], true
		}
	}
	return nil, false
}
