package services

import (
	"context"
	"fmt"
	"log/slog"

	"ticket-storefront/monitoring"
	"ticket-storefront/utils"

	pubnub "github.com/pubnub/go/v7"
)

// PubNubNotifier pushes refund lifecycle notifications to the owner's
// channel. Delivery is best effort: every publish runs on its own goroutine
// behind a circuit breaker, and failures are logged and counted, never
// returned. A refund's validity does not depend on a push being deliverable.
type PubNubNotifier struct {
	pn      *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{
		pn:      pn,
		breaker: utils.NewCircuitBreaker("pubnub-notify"),
	}
}

func (n *PubNubNotifier) Notify(ctx context.Context, kind NotificationKind, ownerID string, payload map[string]any) {
	message := map[string]any{"type": string(kind)}
	for k, v := range payload {
		message[k] = v
	}

	channel := fmt.Sprintf("user-%s", ownerID)

	go func() {
		err := n.breaker.Execute(func() error {
			_, _, err := n.pn.Publish().
				Channel(channel).
				Message(message).
				Execute()
			return err
		})
		if err != nil {
			monitoring.TrackNotifyFailure(string(kind))
			slog.Warn("notification dropped", "kind", kind, "channel", channel, "error", err)
		}
	}()
}
