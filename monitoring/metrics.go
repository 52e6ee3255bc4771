package monitoring

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	purchaseDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_decisions_total",
			Help: "Purchase gate decisions by outcome",
		},
		[]string{"event_id", "outcome"},
	)

	refundTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refund_transitions_total",
			Help: "Refund request status transitions",
		},
		[]string{"from", "to"},
	)

	openRefunds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "open_refund_requests_total",
			Help: "Refund requests currently in requested or processing",
		},
	)

	notifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Push notification deliveries that failed",
		},
		[]string{"kind"},
	)

	capacityRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_capacity_remaining",
			Help: "Remaining sellable capacity per event",
		},
		[]string{"event_id"},
	)
)

type Monitor struct {
	redis    *redis.Client
	interval time.Duration
}

func NewMonitor(ctx context.Context, redisClient *redis.Client, interval time.Duration) *Monitor {
	monitor := &Monitor{redis: redisClient, interval: interval}

	// Start metrics collection
	go monitor.collectMetrics(ctx)

	return monitor
}

func (m *Monitor) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectRefundMetrics(ctx)
			m.collectCapacityMetrics(ctx)
		}
	}
}

func (m *Monitor) collectRefundMetrics(ctx context.Context) {
	guards, err := m.scanKeys(ctx, "refund:open:*")
	if err != nil {
		return
	}
	openRefunds.Set(float64(len(guards)))
}

func (m *Monitor) collectCapacityMetrics(ctx context.Context) {
	keys, err := m.scanKeys(ctx, "capacity:event:*")
	if err != nil {
		return
	}
	for _, key := range keys {
		eventID := key[len("capacity:event:"):]
		fields := m.redis.HGetAll(ctx, key).Val()
		if len(fields) == 0 {
			continue
		}
		maxVal, err := strconv.Atoi(fields["max"])
		if err != nil {
			continue
		}
		sold, err := strconv.Atoi(fields["sold"])
		if err != nil {
			continue
		}
		capacityRemaining.WithLabelValues(eventID).Set(float64(maxVal - sold))
	}
}

// scanKeys walks a key pattern with cursor-based SCAN so the collector never
// blocks Redis the way KEYS would.
func (m *Monitor) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := m.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// TrackPurchaseDecision records a gate or counter outcome ("allowed",
// "passed", "sold_out", "sale_ended", "tier_sold_out").
func TrackPurchaseDecision(eventID, outcome string) {
	purchaseDecisions.WithLabelValues(eventID, outcome).Inc()
}

// TrackRefundTransition records a status change, with "none" as the from
// side of a creation.
func TrackRefundTransition(from, to string) {
	refundTransitions.WithLabelValues(from, to).Inc()
}

func TrackNotifyFailure(kind string) {
	notifyFailures.WithLabelValues(kind).Inc()
}
