package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundRequested  RefundStatus = "requested"
	RefundProcessing RefundStatus = "processing"
	RefundRefunded   RefundStatus = "refunded"
	RefundDenied     RefundStatus = "denied"
)

// Terminal reports whether no further transition is permitted out of s.
func (s RefundStatus) Terminal() bool {
	return s == RefundRefunded || s == RefundDenied
}

// Open reports whether a request in this status still blocks a new request
// for the same ticket.
func (s RefundStatus) Open() bool {
	return s == RefundRequested || s == RefundProcessing
}

func (s RefundStatus) Valid() bool {
	switch s {
	case RefundRequested, RefundProcessing, RefundRefunded, RefundDenied:
		return true
	}
	return false
}

type RefundReason string

const (
	ReasonChangedMind      RefundReason = "changed_mind"
	ReasonNeedMoney        RefundReason = "need_money"
	ReasonSuspectedScam    RefundReason = "suspected_scam"
	ReasonWrongTicket      RefundReason = "wrong_ticket"
	ReasonDislikeOrganizer RefundReason = "dislike_organizer"
	ReasonOther            RefundReason = "other"
)

func (r RefundReason) Valid() bool {
	switch r {
	case ReasonChangedMind, ReasonNeedMoney, ReasonSuspectedScam,
		ReasonWrongTicket, ReasonDislikeOrganizer, ReasonOther:
		return true
	}
	return false
}

// PayoutAccount is where an approved refund gets paid out.
type PayoutAccount struct {
	Bank          string `json:"bank"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type RefundRequest struct {
	ID               string          `json:"id"`
	TicketID         string          `json:"ticket_id"`
	TicketReference  string          `json:"ticket_reference"`
	EventID          string          `json:"event_id"`
	OwnerID          string          `json:"owner_id"`
	RefundableAmount decimal.Decimal `json:"refundable_amount"`
	Reason           RefundReason    `json:"reason"`
	CustomReason     string          `json:"custom_reason,omitempty"`
	Note             string          `json:"note,omitempty"`
	Payout           PayoutAccount   `json:"payout"`
	Status           RefundStatus    `json:"status"`
	StatusReason     string          `json:"status_reason,omitempty"`
	RequestedAt      time.Time       `json:"requested_at"`
}
