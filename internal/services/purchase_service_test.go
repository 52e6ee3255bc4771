package services

import (
	"context"
	"testing"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	events map[string]*models.Event
}

func (f *fakeEvents) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, status.ErrEventNotFound
}

type fakeTicketWriter struct {
	created []*models.Ticket
}

func (f *fakeTicketWriter) CreateTicket(ctx context.Context, t *models.Ticket) (string, error) {
	f.created = append(f.created, t)
	return "ticket-1", nil
}

// fakeCounters returns a scripted sequence of results, so tests can make the
// snapshot check pass while the atomic claim loses.
type fakeCounters struct {
	results []error
	calls   int
}

func (f *fakeCounters) TryIncrement(ctx context.Context, event *models.Event, tierPolicy string) error {
	if _, ok := event.FindTier(tierPolicy); !ok {
		return status.ErrUnknownTier
	}
	if f.calls >= len(f.results) {
		return nil
	}
	err := f.results[f.calls]
	f.calls++
	return err
}

func setupPurchaseService(counters CounterWriter) (*PurchaseService, *fakeEvents, *fakeTicketWriter) {
	events := &fakeEvents{events: map[string]*models.Event{}}
	tickets := &fakeTicketWriter{}
	gate := NewPurchaseGate(NewEventStatusEvaluator(time.UTC))

	service := NewPurchaseService(
		events,
		tickets,
		counters,
		gate,
		fixedClock{t: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)},
		decimal.NewFromInt(500),
	)
	return service, events, tickets
}

func openEvent() *models.Event {
	return &models.Event{
		ID:       "event-1",
		Name:     "Lao Music Fest",
		StartAt:  time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Capacity: &models.Capacity{Enabled: true, Max: 100, Sold: 42},
		Tiers: []models.Tier{
			{Policy: "vip", Price: decimal.NewFromInt(25000), Stock: &models.TierStock{Max: 10, Sold: 3}},
			{Policy: "standard", Price: decimal.NewFromInt(8000)},
		},
	}
}

func TestPurchase_IssuesTicket(t *testing.T) {
	service, events, tickets := setupPurchaseService(&fakeCounters{})
	events.events["event-1"] = openEvent()

	ticket, err := service.Purchase(context.Background(), "user-1", "event-1", "vip")
	require.NoError(t, err)

	assert.Equal(t, "ticket-1", ticket.ID)
	assert.Equal(t, "user-1", ticket.OwnerID)
	assert.Equal(t, "vip", ticket.TierPolicy)
	assert.Len(t, ticket.Reference, 12)
	assert.True(t, decimal.NewFromInt(25000).Equal(ticket.Price))
	assert.True(t, decimal.NewFromInt(25500).Equal(ticket.TotalPaid))
	assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), ticket.PurchasedAt)
	assert.Len(t, tickets.created, 1)
}

func TestPurchase_BlockedByGate(t *testing.T) {
	service, events, tickets := setupPurchaseService(&fakeCounters{})
	event := openEvent()
	event.Capacity.Sold = event.Capacity.Max
	events.events["event-1"] = event

	_, err := service.Purchase(context.Background(), "user-1", "event-1", "vip")
	assert.ErrorIs(t, err, status.ErrSoldOut)
	assert.Empty(t, tickets.created)
}

func TestPurchase_LastSlotRaceLoss(t *testing.T) {
	// The snapshot says one slot remains, but the atomic claim finds the
	// counter already at max. The caller sees the same sold-out error as a
	// pre-check block and no ticket is written.
	service, events, tickets := setupPurchaseService(&fakeCounters{results: []error{status.ErrSoldOut}})
	event := openEvent()
	event.Capacity.Sold = event.Capacity.Max - 1
	events.events["event-1"] = event

	_, err := service.Purchase(context.Background(), "user-1", "event-1", "standard")
	assert.ErrorIs(t, err, status.ErrSoldOut)
	assert.Empty(t, tickets.created)
}

func TestPurchase_TierRaceLoss(t *testing.T) {
	service, events, tickets := setupPurchaseService(&fakeCounters{results: []error{status.ErrTierSoldOut}})
	events.events["event-1"] = openEvent()

	_, err := service.Purchase(context.Background(), "user-1", "event-1", "vip")
	assert.ErrorIs(t, err, status.ErrTierSoldOut)
	assert.Empty(t, tickets.created)
}

func TestPurchase_UnknownEvent(t *testing.T) {
	service, _, _ := setupPurchaseService(&fakeCounters{})

	_, err := service.Purchase(context.Background(), "user-1", "missing", "vip")
	assert.ErrorIs(t, err, status.ErrEventNotFound)
}

func TestPurchase_UnknownTier(t *testing.T) {
	service, events, _ := setupPurchaseService(&fakeCounters{})
	events.events["event-1"] = openEvent()

	_, err := service.Purchase(context.Background(), "user-1", "event-1", "backstage")
	assert.ErrorIs(t, err, status.ErrUnknownTier)
}

func TestPurchase_FreeAdmission(t *testing.T) {
	service, events, _ := setupPurchaseService(&fakeCounters{})
	events.events["event-1"] = &models.Event{
		ID:      "event-1",
		StartAt: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	ticket, err := service.Purchase(context.Background(), "user-1", "event-1", models.FreeAdmission)
	require.NoError(t, err)
	assert.Equal(t, models.FreeAdmission, ticket.TierPolicy)
	assert.True(t, ticket.Price.IsZero())
	assert.True(t, decimal.NewFromInt(500).Equal(ticket.TotalPaid))
}

func TestStatus_PerTierAvailability(t *testing.T) {
	service, events, _ := setupPurchaseService(&fakeCounters{})
	event := openEvent()
	event.Tiers[0].Stock.Sold = event.Tiers[0].Stock.Max
	events.events["event-1"] = event

	got, err := service.Status(context.Background(), "event-1")
	require.NoError(t, err)

	assert.Equal(t, "event-1", got.EventID)
	assert.False(t, got.Status.IsSoldOut)
	require.Len(t, got.Tiers, 2)

	assert.Equal(t, "vip", got.Tiers[0].Policy)
	assert.False(t, got.Tiers[0].Decision.Allowed)
	assert.Equal(t, BlockTierSoldOut, got.Tiers[0].Decision.Reason)

	assert.Equal(t, "standard", got.Tiers[1].Policy)
	assert.True(t, got.Tiers[1].Decision.Allowed)
}

func TestStatus_UntieredEvent(t *testing.T) {
	service, events, _ := setupPurchaseService(&fakeCounters{})
	events.events["event-1"] = &models.Event{
		ID:      "event-1",
		StartAt: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	got, err := service.Status(context.Background(), "event-1")
	require.NoError(t, err)
	require.Len(t, got.Tiers, 1)
	assert.Equal(t, models.FreeAdmission, got.Tiers[0].Policy)
	assert.True(t, got.Tiers[0].Decision.Allowed)
}
