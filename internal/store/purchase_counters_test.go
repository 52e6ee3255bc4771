package store

import (
	"context"
	"testing"
	"time"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capacityEvent() *models.Event {
	return &models.Event{
		ID:      "event-1",
		Name:    "Lao Music Fest",
		StartAt: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Capacity: &models.Capacity{
			Enabled: true,
			Max:     100,
			Sold:    42,
		},
		Tiers: []models.Tier{
			{
				Policy: "vip",
				Price:  decimal.NewFromInt(25000),
				Stock:  &models.TierStock{Max: 10, Sold: 3},
			},
			{
				Policy: "standard",
				Price:  decimal.NewFromInt(8000),
			},
		},
	}
}

func TestTryIncrement_ClaimsSlot(t *testing.T) {
	db, mock := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	mock.ExpectEval(tryIncrementScript,
		[]string{"capacity:event:event-1", "capacity:tier:event-1:vip"},
		"1", "1").SetVal("ok")

	err := counters.TryIncrement(context.Background(), capacityEvent(), "vip")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryIncrement_EventSoldOut(t *testing.T) {
	db, mock := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	mock.ExpectEval(tryIncrementScript,
		[]string{"capacity:event:event-1", "capacity:tier:event-1:vip"},
		"1", "1").SetVal("sold_out")

	err := counters.TryIncrement(context.Background(), capacityEvent(), "vip")
	assert.ErrorIs(t, err, status.ErrSoldOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryIncrement_TierSoldOut(t *testing.T) {
	db, mock := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	mock.ExpectEval(tryIncrementScript,
		[]string{"capacity:event:event-1", "capacity:tier:event-1:vip"},
		"1", "1").SetVal("tier_sold_out")

	err := counters.TryIncrement(context.Background(), capacityEvent(), "vip")
	assert.ErrorIs(t, err, status.ErrTierSoldOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryIncrement_MissingCounter(t *testing.T) {
	db, mock := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	mock.ExpectEval(tryIncrementScript,
		[]string{"capacity:event:event-1", "capacity:tier:event-1:vip"},
		"1", "1").SetVal("missing_counter")

	err := counters.TryIncrement(context.Background(), capacityEvent(), "vip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not seeded")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryIncrement_UntrackedTierSkipsStockCheck(t *testing.T) {
	db, mock := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	// The standard tier has no stock limit, so only the event counter is
	// enforced.
	mock.ExpectEval(tryIncrementScript,
		[]string{"capacity:event:event-1", "capacity:tier:event-1:standard"},
		"1", "0").SetVal("ok")

	err := counters.TryIncrement(context.Background(), capacityEvent(), "standard")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryIncrement_DisabledCapacity(t *testing.T) {
	db, mock := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	event := capacityEvent()
	event.Capacity.Enabled = false

	mock.ExpectEval(tryIncrementScript,
		[]string{"capacity:event:event-1", "capacity:tier:event-1:vip"},
		"0", "1").SetVal("ok")

	err := counters.TryIncrement(context.Background(), event, "vip")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryIncrement_UnknownTier(t *testing.T) {
	db, _ := redismock.NewClientMock()
	counters := NewPurchaseCounters(db)

	err := counters.TryIncrement(context.Background(), capacityEvent(), "backstage")
	assert.ErrorIs(t, err, status.ErrUnknownTier)
}
