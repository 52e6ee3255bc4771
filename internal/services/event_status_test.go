package services

import (
	"testing"
	"time"

	"ticket-storefront/models"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusEvaluator_Today(t *testing.T) {
	evaluator := NewEventStatusEvaluator(time.UTC)

	start := time.Date(2026, 8, 31, 19, 0, 0, 0, time.UTC)
	event := &models.Event{StartAt: start}

	// Morning of the event day counts as today even before doors open.
	st := evaluator.Evaluate(event, time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC))
	assert.True(t, st.IsToday)
	assert.False(t, st.IsPassed)

	st = evaluator.Evaluate(event, time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC))
	assert.False(t, st.IsToday)
}

func TestEventStatusEvaluator_PassedWithEndTimeOverlay(t *testing.T) {
	evaluator := NewEventStatusEvaluator(time.UTC)

	event := &models.Event{
		StartAt: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		EndTime: "22:30",
	}

	st := evaluator.Evaluate(event, time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC))
	assert.False(t, st.IsPassed)

	st = evaluator.Evaluate(event, time.Date(2026, 8, 31, 22, 31, 0, 0, time.UTC))
	assert.True(t, st.IsPassed)
}

func TestEventStatusEvaluator_PassedWithoutEndDate(t *testing.T) {
	evaluator := NewEventStatusEvaluator(time.UTC)

	// No end date: the event runs to the end of its start day.
	event := &models.Event{StartAt: time.Date(2026, 8, 31, 19, 0, 0, 0, time.UTC)}

	st := evaluator.Evaluate(event, time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC))
	assert.False(t, st.IsPassed)

	st = evaluator.Evaluate(event, time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC))
	assert.True(t, st.IsPassed)
}

func TestEventStatusEvaluator_SoldOut(t *testing.T) {
	evaluator := NewEventStatusEvaluator(time.UTC)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	event := &models.Event{
		StartAt:  now.AddDate(0, 1, 0),
		Capacity: &models.Capacity{Enabled: true, Max: 100, Sold: 100},
	}
	assert.True(t, evaluator.Evaluate(event, now).IsSoldOut)

	event.Capacity.Sold = 99
	assert.False(t, evaluator.Evaluate(event, now).IsSoldOut)

	// Disabled capacity never reports sold out.
	event.Capacity = &models.Capacity{Enabled: false, Max: 100, Sold: 150}
	assert.False(t, evaluator.Evaluate(event, now).IsSoldOut)
}

func TestEventStatusEvaluator_SaleEnded(t *testing.T) {
	evaluator := NewEventStatusEvaluator(time.UTC)
	stop := time.Date(2026, 8, 15, 18, 0, 0, 0, time.UTC)

	event := &models.Event{
		StartAt:    time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC),
		SaleWindow: &models.SaleWindow{Enabled: true, StopAt: stop},
	}

	assert.False(t, evaluator.Evaluate(event, stop).IsSaleEnded)
	assert.True(t, evaluator.Evaluate(event, stop.Add(time.Minute)).IsSaleEnded)
}

func TestEventStatusEvaluator_IndependentFacts(t *testing.T) {
	evaluator := NewEventStatusEvaluator(time.UTC)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// An event can be today and sold out at the same time.
	event := &models.Event{
		StartAt:  time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC),
		Capacity: &models.Capacity{Enabled: true, Max: 10, Sold: 10},
	}

	st := evaluator.Evaluate(event, now)
	assert.True(t, st.IsToday)
	assert.True(t, st.IsSoldOut)
	assert.False(t, st.IsPassed)
}

func TestEventStatusEvaluator_TimezoneDayBoundary(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	evaluator := NewEventStatusEvaluator(bangkok)

	// 18:00 UTC on the 30th is already the 31st in Bangkok (UTC+7).
	event := &models.Event{StartAt: time.Date(2026, 8, 31, 10, 0, 0, 0, bangkok)}
	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)

	assert.True(t, evaluator.Evaluate(event, now).IsToday)
}
