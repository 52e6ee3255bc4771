package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "tickets",
			"type": "base",
			"system": false,
			"fields": [
				{
					"name": "reference",
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
					"name": "tier_policy",
					"type": "text",
					"required": true
				},
				{
					"name": "price",
					"type": "text",
					"required": true
				},
				{
					"name": "total_paid",
					"type": "text",
					"required": true
				},
				{
					"name": "purchased_at",
					"type": "date",
					"required": true
				},
				{
					"name": "verified",
					"type": "bool",
					"required": false
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_tickets_reference ON tickets (reference)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
