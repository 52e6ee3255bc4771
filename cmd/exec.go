package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-storefront/config"
	"ticket-storefront/internal/handlers"
	"ticket-storefront/internal/services"
	"ticket-storefront/internal/store"
	"ticket-storefront/monitoring"
	"ticket-storefront/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"
	"github.com/spf13/cobra"

	_ "ticket-storefront/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUserID))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := time.LoadLocation(cfg.EventTimezone)
	if err != nil {
		slog.Warn("unknown event timezone, falling back to UTC", "tz", cfg.EventTimezone)
		loc = time.UTC
	}

	// Stores
	catalog := store.NewCatalogStore(app, redisClient)
	counters := store.NewPurchaseCounters(redisClient)
	refunds := store.NewRefundStore(app, redisClient)

	// Initialize services
	clock := services.SystemClock()
	evaluator := services.NewEventStatusEvaluator(loc)
	gate := services.NewPurchaseGate(evaluator)
	notifier := services.NewPubNubNotifier(pn)
	eligibility := services.NewRefundEligibilityCalculator(cfg.RefundOpenAfter, cfg.RefundCloseAfter)

	purchaseService := services.NewPurchaseService(catalog, catalog, counters, gate, clock, cfg.PlatformFee)
	refundService := services.NewRefundService(catalog, refunds, notifier, eligibility, clock, cfg.RefundFee)

	// Initialize handlers
	purchaseHandler := handlers.NewPurchaseHandler(app, purchaseService)
	refundHandler := handlers.NewRefundHandler(app, refundService)
	adminHandler := handlers.NewAdminHandler(app, refundService, cfg)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	app.RootCmd.AddCommand(newHashWebhookSecretCmd())

	// Monitoring
	if cfg.EnableMetrics {
		monitoring.NewMonitor(ctx, redisClient, cfg.MetricsInterval)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		if err := catalog.SeedCounters(ctx); err != nil {
			slog.Error("catalog.SeedCounters()", "error", err)
		}

		// Storefront endpoints
		e.Router.GET("/api/v1/events/{eventId}/status", purchaseHandler.GetEventStatus)
		e.Router.POST("/api/v1/events/{eventId}/purchase", purchaseHandler.Purchase)

		// Refund endpoints
		e.Router.GET("/api/v1/tickets/{ticketId}/refund-eligibility", refundHandler.GetEligibility)
		e.Router.POST("/api/v1/refunds", refundHandler.CreateRefund)
		e.Router.GET("/api/v1/refunds/track", refundHandler.TrackByReference)
		e.Router.GET("/api/v1/refunds/{refundId}", refundHandler.GetRefund)

		// Staff endpoints
		e.Router.POST("/api/v1/admin/refunds/{refundId}/processing", adminHandler.AdvanceToProcessing)
		e.Router.POST("/api/v1/admin/refunds/{refundId}/approve", adminHandler.Approve)
		e.Router.POST("/api/v1/admin/refunds/{refundId}/deny", adminHandler.Deny)

		// Payout rail callback
		e.Router.POST("/api/v1/payout/confirm", adminHandler.ConfirmPayout)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	return app.Start()
}

// newHashWebhookSecretCmd hashes a payout webhook secret for the
// PAYOUT_WEBHOOK_SECRET_HASH env var, so the plaintext secret only lives on
// the payout rail's side.
func newHashWebhookSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-webhook-secret [secret]",
		Short: "Hash a payout webhook secret for PAYOUT_WEBHOOK_SECRET_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.GenerateSecretHash(args[0])
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
