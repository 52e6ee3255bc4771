package store

import (
	"context"
	"fmt"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/redis/go-redis/v9"
)

// tryIncrementScript claims one slot on the event counter and the tier
// counter in a single step. Either both increments happen or neither does,
// so two concurrent buyers of the last slot get exactly one winner.
//
// KEYS[1] = capacity:event:{eventID}
// KEYS[2] = capacity:tier:{eventID}:{policy}
// ARGV[1] = "1" when the event-level capacity is enforced
// ARGV[2] = "1" when the tier has its own stock limit
const tryIncrementScript = `
if ARGV[1] == "1" then
	local max = tonumber(redis.call('HGET', KEYS[1], 'max'))
	local sold = tonumber(redis.call('HGET', KEYS[1], 'sold'))
	if max == nil or sold == nil then
		return 'missing_counter'
	end
	if sold >= max then
		return 'sold_out'
	end
end
if ARGV[2] == "1" then
	local max = tonumber(redis.call('HGET', KEYS[2], 'max'))
	local sold = tonumber(redis.call('HGET', KEYS[2], 'sold'))
	if max == nil or sold == nil then
		return 'missing_counter'
	end
	if sold >= max then
		return 'tier_sold_out'
	end
end
if ARGV[1] == "1" then
	redis.call('HINCRBY', KEYS[1], 'sold', 1)
end
if ARGV[2] == "1" then
	redis.call('HINCRBY', KEYS[2], 'sold', 1)
end
return 'ok'
`

// PurchaseCounters is the Redis-backed CounterWriter. The counters it
// guards are the only authority on remaining capacity; the gate's snapshot
// check is advisory.
type PurchaseCounters struct {
	Redis *redis.Client
}

func NewPurchaseCounters(redisClient *redis.Client) *PurchaseCounters {
	return &PurchaseCounters{Redis: redisClient}
}

func EventCounterKey(eventID string) string {
	return fmt.Sprintf("capacity:event:%s", eventID)
}

func TierCounterKey(eventID, policy string) string {
	return fmt.Sprintf("capacity:tier:%s:%s", eventID, policy)
}

func (c *PurchaseCounters) TryIncrement(ctx context.Context, event *models.Event, tierPolicy string) error {
	tier, ok := event.FindTier(tierPolicy)
	if !ok {
		return status.ErrUnknownTier
	}

	eventEnforced := "0"
	if event.Capacity != nil && event.Capacity.Enabled {
		eventEnforced = "1"
	}
	tierEnforced := "0"
	if tier.Stock != nil {
		tierEnforced = "1"
	}

	keys := []string{
		EventCounterKey(event.ID),
		TierCounterKey(event.ID, tierPolicy),
	}

	result, err := c.Redis.Eval(ctx, tryIncrementScript, keys, eventEnforced, tierEnforced).Result()
	if err != nil {
		return fmt.Errorf("capacity increment script: %w", err)
	}

	switch result {
	case "ok":
		return nil
	case "sold_out":
		return status.ErrSoldOut
	case "tier_sold_out":
		return status.ErrTierSoldOut
	case "missing_counter":
		return fmt.Errorf("capacity counters not seeded for event %s", event.ID)
	}
	return fmt.Errorf("unexpected increment result %v for event %s", result, event.ID)
}
