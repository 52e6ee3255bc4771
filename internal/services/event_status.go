package services

import (
	"time"

	"ticket-storefront/models"
)

// EventStatus is the set of independent facts about an event at a given
// instant. An event can be Today and SoldOut at the same time; callers that
// need a single answer apply their own precedence (see PurchaseGate).
type EventStatus struct {
	IsToday     bool `json:"is_today"`
	IsPassed    bool `json:"is_passed"`
	IsSoldOut   bool `json:"is_sold_out"`
	IsSaleEnded bool `json:"is_sale_ended"`
}

// EventStatusEvaluator classifies events against a clock. It holds no state
// beyond the location used for calendar-day comparisons, so a single
// instance is shared across requests and re-evaluated every time.
type EventStatusEvaluator struct {
	loc *time.Location
}

func NewEventStatusEvaluator(loc *time.Location) *EventStatusEvaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &EventStatusEvaluator{loc: loc}
}

func (ev *EventStatusEvaluator) Evaluate(event *models.Event, now time.Time) EventStatus {
	return EventStatus{
		IsToday:     ev.isSameDay(event.StartAt, now),
		IsPassed:    now.After(ev.effectiveEnd(event)),
		IsSoldOut:   isSoldOut(event.Capacity),
		IsSaleEnded: isSaleEnded(event.SaleWindow, now),
	}
}

func (ev *EventStatusEvaluator) isSameDay(a, b time.Time) bool {
	a, b = a.In(ev.loc), b.In(ev.loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// effectiveEnd resolves when the event is over: the configured end date with
// its clock-time overlay applied, end of that day when no overlay is set,
// or end of the start day when no end date exists at all.
func (ev *EventStatusEvaluator) effectiveEnd(event *models.Event) time.Time {
	if event.EndAt.IsZero() {
		return endOfDay(event.StartAt.In(ev.loc))
	}
	end := event.EndAt.In(ev.loc)
	if overlay, err := time.Parse("15:04", event.EndTime); err == nil && event.EndTime != "" {
		return time.Date(end.Year(), end.Month(), end.Day(),
			overlay.Hour(), overlay.Minute(), 0, 0, ev.loc)
	}
	return endOfDay(end)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func isSoldOut(c *models.Capacity) bool {
	return c != nil && c.Enabled && c.Sold >= c.Max
}

func isSaleEnded(w *models.SaleWindow, now time.Time) bool {
	return w != nil && w.Enabled && now.After(w.StopAt)
}
