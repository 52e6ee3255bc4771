package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "events",
			"type": "base",
			"system": false,
			"fields": [
				{
					"name": "name",
					"type": "text",
					"required": true
				},
				{
					"name": "description",
					"type": "editor",
					"required": false
				},
				{
					"name": "venue",
					"type": "text",
					"required": false
				},
				{
					"name": "booker",
					"type": "relation",
					"required": false,
					"collectionId": "_pb_users_auth_",
					"maxSelect": 1
				},
				{
					"name": "start_at",
					"type": "date",
					"required": true
				},
				{
					"name": "end_at",
					"type": "date",
					"required": false
				},
				{
					"name": "start_time",
					"type": "text",
					"required": false
				},
				{
					"name": "end_time",
					"type": "text",
					"required": false
				},
				{
					"name": "capacity_enabled",
					"type": "bool",
					"required": false
				},
				{
					"name": "capacity_max",
					"type": "number",
					"required": false,
					"min": 0,
					"onlyInt": true
				},
				{
					"name": "sale_enabled",
					"type": "bool",
					"required": false
				},
				{
					"name": "sale_stop_at",
					"type": "date",
					"required": false
				},
				{
					"name": "tiers",
					"type": "json",
					"required": false
				}
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
