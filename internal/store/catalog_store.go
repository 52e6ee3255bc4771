package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CatalogStore reads events and tickets from PocketBase records and overlays
// the live sold counters kept in Redis, so every purchase decision sees the
// current counts rather than the last saved record.
type CatalogStore struct {
	app   core.App
	redis *redis.Client
}

func NewCatalogStore(app core.App, redisClient *redis.Client) *CatalogStore {
	return &CatalogStore{app: app, redis: redisClient}
}

func (s *CatalogStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	record, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		return nil, status.ErrEventNotFound
	}

	event := &models.Event{
		ID:          record.Id,
		Name:        record.GetString("name"),
		Description: record.GetString("description"),
		Venue:       record.GetString("venue"),
		BookerID:    record.GetString("booker"),
		StartAt:     record.GetDateTime("start_at").Time(),
		EndAt:       record.GetDateTime("end_at").Time(),
		StartTime:   record.GetString("start_time"),
		EndTime:     record.GetString("end_time"),
	}

	if record.GetBool("capacity_enabled") {
		sold, err := s.soldCount(ctx, EventCounterKey(eventID))
		if err != nil {
			return nil, err
		}
		event.Capacity = &models.Capacity{
			Enabled: true,
			Max:     record.GetInt("capacity_max"),
			Sold:    sold,
		}
	}

	if record.GetBool("sale_enabled") {
		event.SaleWindow = &models.SaleWindow{
			Enabled: true,
			StopAt:  record.GetDateTime("sale_stop_at").Time(),
		}
	}

	var tiers []tierRecord
	if err := record.UnmarshalJSONField("tiers", &tiers); err != nil && record.GetString("tiers") != "" {
		return nil, fmt.Errorf("decode tiers for event %s: %w", eventID, err)
	}
	for _, t := range tiers {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			return nil, fmt.Errorf("decode tier price %q for event %s: %w", t.Price, eventID, err)
		}
		tier := models.Tier{Policy: t.Policy, Price: price}
		if t.StockMax > 0 {
			sold, err := s.soldCount(ctx, TierCounterKey(eventID, t.Policy))
			if err != nil {
				return nil, err
			}
			tier.Stock = &models.TierStock{Max: t.StockMax, Sold: sold}
		}
		event.Tiers = append(event.Tiers, tier)
	}

	return event, nil
}

type tierRecord struct {
	Policy   string `json:"policy"`
	Price    string `json:"price"`
	StockMax int    `json:"stock_max,omitempty"`
}

func (s *CatalogStore) soldCount(ctx context.Context, key string) (int, error) {
	sold, err := s.redis.HGet(ctx, key, "sold").Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("read counter %s: %w", key, err)
	}
	return sold, nil
}

func (s *CatalogStore) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	record, err := s.app.FindRecordById("tickets", ticketID)
	if err != nil {
		return nil, status.ErrTicketNotFound
	}
	return recordToTicket(record)
}

func (s *CatalogStore) GetTicketByReference(ctx context.Context, reference string) (*models.Ticket, error) {
	record, err := s.app.FindFirstRecordByFilter("tickets", "reference = {:ref}",
		dbx.Params{"ref": reference})
	if err != nil {
		return nil, status.ErrTicketNotFound
	}
	return recordToTicket(record)
}

func (s *CatalogStore) CreateTicket(ctx context.Context, ticket *models.Ticket) (string, error) {
	collection, err := s.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return "", fmt.Errorf("tickets collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("reference", ticket.Reference)
	record.Set("event", ticket.EventID)
	record.Set("owner", ticket.OwnerID)
	record.Set("tier_policy", ticket.TierPolicy)
	record.Set("price", ticket.Price.String())
	record.Set("total_paid", ticket.TotalPaid.String())
	record.Set("purchased_at", ticket.PurchasedAt)
	record.Set("verified", ticket.Verified)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return "", fmt.Errorf("save ticket: %w", err)
	}
	return record.Id, nil
}

func recordToTicket(record *core.Record) (*models.Ticket, error) {
	price, err := decimal.NewFromString(record.GetString("price"))
	if err != nil {
		return nil, fmt.Errorf("decode ticket price: %w", err)
	}
	totalPaid, err := decimal.NewFromString(record.GetString("total_paid"))
	if err != nil {
		return nil, fmt.Errorf("decode ticket total: %w", err)
	}

	return &models.Ticket{
		ID:          record.Id,
		Reference:   record.GetString("reference"),
		EventID:     record.GetString("event"),
		OwnerID:     record.GetString("owner"),
		TierPolicy:  record.GetString("tier_policy"),
		Price:       price,
		TotalPaid:   totalPaid,
		PurchasedAt: record.GetDateTime("purchased_at").Time(),
		Verified:    record.GetBool("verified"),
	}, nil
}

// SeedCounters initializes the Redis capacity counters from the event
// records. Sold counts are only written when absent so a restart never
// rewinds sales; max values follow the record.
func (s *CatalogStore) SeedCounters(ctx context.Context) error {
	records, err := s.app.FindAllRecords("events")
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	for _, record := range records {
		if record.GetBool("capacity_enabled") {
			key := EventCounterKey(record.Id)
			s.redis.HSetNX(ctx, key, "sold", 0)
			s.redis.HSet(ctx, key, "max", record.GetInt("capacity_max"))
		}

		var tiers []tierRecord
		if err := record.UnmarshalJSONField("tiers", &tiers); err != nil {
			continue
		}
		for _, t := range tiers {
			if t.StockMax <= 0 {
				continue
			}
			key := TierCounterKey(record.Id, t.Policy)
			s.redis.HSetNX(ctx, key, "sold", 0)
			s.redis.HSet(ctx, key, "max", t.StockMax)
		}
	}

	slog.Info("capacity counters seeded", "events", len(records))
	return nil
}
