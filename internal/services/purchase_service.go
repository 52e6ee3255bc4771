package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/monitoring"
	"ticket-storefront/utils"

	"github.com/shopspring/decimal"
)

// PurchaseService runs a purchase attempt end to end: gate the snapshot,
// claim a slot with the atomic counter write, then issue the ticket. The
// gate result is advisory only; the counter write is what prevents
// overselling under concurrent requests.
type PurchaseService struct {
	events   EventReader
	tickets  TicketWriter
	counters CounterWriter
	gate     *PurchaseGate
	clock    Clock
	fee      decimal.Decimal
}

func NewPurchaseService(events EventReader, tickets TicketWriter, counters CounterWriter, gate *PurchaseGate, clock Clock, platformFee decimal.Decimal) *PurchaseService {
	return &PurchaseService{
		events:   events,
		tickets:  tickets,
		counters: counters,
		gate:     gate,
		clock:    clock,
		fee:      platformFee,
	}
}

func (s *PurchaseService) Purchase(ctx context.Context, ownerID, eventID, tierPolicy string) (*models.Ticket, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}

	now := s.clock.Now()
	decision, err := s.gate.Decide(event, tierPolicy, now)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		monitoring.TrackPurchaseDecision(eventID, string(decision.Reason))
		return nil, decision.BlockError()
	}

	if err := s.counters.TryIncrement(ctx, event, tierPolicy); err != nil {
		// Lost the race for the last slot. Same shape as a pre-check
		// block so the caller's path is uniform.
		if errors.Is(err, status.ErrSoldOut) || errors.Is(err, status.ErrTierSoldOut) {
			monitoring.TrackPurchaseDecision(eventID, "capacity_exceeded")
			return nil, err
		}
		return nil, fmt.Errorf("claim capacity for event %s: %w", eventID, err)
	}

	tier, _ := event.FindTier(tierPolicy)

	reference, err := utils.GenerateCode(6)
	if err != nil {
		return nil, fmt.Errorf("generate ticket reference: %w", err)
	}

	ticket := &models.Ticket{
		Reference:   reference,
		EventID:     eventID,
		OwnerID:     ownerID,
		TierPolicy:  tier.Policy,
		Price:       tier.Price,
		TotalPaid:   tier.Price.Add(s.fee),
		PurchasedAt: now,
	}

	id, err := s.tickets.CreateTicket(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("persist ticket: %w", err)
	}
	ticket.ID = id

	monitoring.TrackPurchaseDecision(eventID, "allowed")
	slog.Info("ticket issued", "event_id", eventID, "ticket", ticket.Reference, "tier", tier.Policy)

	return ticket, nil
}

// Status reports the evaluator facts plus per-tier availability for the
// buy dialog.
func (s *PurchaseService) Status(ctx context.Context, eventID string) (*EventAvailability, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}

	now := s.clock.Now()
	st := s.gate.evaluator.Evaluate(event, now)

	availability := &EventAvailability{EventID: eventID, Status: st}
	tiers := event.Tiers
	if len(tiers) == 0 {
		tiers = []models.Tier{{Policy: models.FreeAdmission, Price: decimal.Zero}}
	}
	for _, tier := range tiers {
		decision, err := s.gate.Decide(event, tier.Policy, now)
		if err != nil {
			return nil, err
		}
		availability.Tiers = append(availability.Tiers, TierAvailability{
			Policy:   tier.Policy,
			Price:    tier.Price,
			Decision: decision,
		})
	}
	return availability, nil
}

type EventAvailability struct {
	EventID string             `json:"event_id"`
	Status  EventStatus        `json:"status"`
	Tiers   []TierAvailability `json:"tiers"`
}

type TierAvailability struct {
	Policy   string           `json:"policy"`
	Price    decimal.Decimal  `json:"price"`
	Decision PurchaseDecision `json:"decision"`
}
