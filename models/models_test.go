package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundStatus(t *testing.T) {
	assert.True(t, RefundRequested.Open())
	assert.True(t, RefundProcessing.Open())
	assert.False(t, RefundRefunded.Open())
	assert.False(t, RefundDenied.Open())

	assert.False(t, RefundRequested.Terminal())
	assert.False(t, RefundProcessing.Terminal())
	assert.True(t, RefundRefunded.Terminal())
	assert.True(t, RefundDenied.Terminal())

	assert.True(t, RefundProcessing.Valid())
	assert.False(t, RefundStatus("cancelled").Valid())
}

func TestRefundReason_Valid(t *testing.T) {
	assert.True(t, ReasonChangedMind.Valid())
	assert.True(t, ReasonOther.Valid())
	assert.False(t, RefundReason("").Valid())
	assert.False(t, RefundReason("bored").Valid())
}

func TestFindTier(t *testing.T) {
	event := &Event{
		ID: "event-1",
		Tiers: []Tier{
			{Policy: "vip", Price: decimal.NewFromInt(25000)},
			{Policy: "standard", Price: decimal.NewFromInt(8000)},
		},
	}

	tier, ok := event.FindTier("standard")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(8000).Equal(tier.Price))

	_, ok = event.FindTier("backstage")
	assert.False(t, ok)

	// A tiered event has no implicit free admission.
	_, ok = event.FindTier(FreeAdmission)
	assert.False(t, ok)
}

func TestFindTier_UntieredEvent(t *testing.T) {
	event := &Event{ID: "event-2"}

	tier, ok := event.FindTier(FreeAdmission)
	require.True(t, ok)
	assert.Equal(t, FreeAdmission, tier.Policy)
	assert.True(t, tier.Price.IsZero())
	assert.Nil(t, tier.Stock)

	_, ok = event.FindTier("vip")
	assert.False(t, ok)
}
