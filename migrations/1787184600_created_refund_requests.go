package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "refund_requests",
			"type": "base",
			"system": false,
			"fields": [
				{
					"name": "ticket",
					"type": "relation",
					"required": true,
					"collectionId": "tickets",
					"maxSelect": 1
				},
				{
					"name": "ticket_reference",
					"type": "text",
					"required": true
				},
				{
					"name": "event",
					"type": "relation",
					"required": true,
					"collectionId": "events",
					"maxSelect": 1
				},
				{
					"name": "owner",
					"type": "relation",
					"required": true,
					"collectionId": "_pb_users_auth_",
					"maxSelect": 1
				},
				{
					"name": "refundable_amount",
					"type": "text",
					"required": true
				},
				{
					"name": "reason",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["changed_mind", "need_money", "suspected_scam", "wrong_ticket", "dislike_organizer", "other"]
				},
				{
					"name": "custom_reason",
					"type": "text",
					"required": false
				},
				{
					"name": "note",
					"type": "text",
					"required": false
				},
				{
					"name": "payout_bank",
					"type": "text",
					"required": true
				},
				{
					"name": "payout_account_number",
					"type": "text",
					"required": true
				},
				{
					"name": "payout_account_name",
					"type": "text",
					"required": true
				},
				{
					"name": "status",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["requested", "processing", "refunded", "denied"]
				},
				{
					"name": "status_reason",
					"type": "text",
					"required": false
				},
				{
					"name": "requested_at",
					"type": "date",
					"required": true
				},
				{
					"name": "updated",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_refund_requests_ticket ON refund_requests (ticket)",
				"CREATE INDEX idx_refund_requests_ticket_reference ON refund_requests (ticket_reference)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("refund_requests")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
