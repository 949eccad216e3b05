package eventbus

import "github.com/webhookx-io/hookshot/model"

const (
	EventWebhooksChanged = "webhooks.changed"
	EventTabRemoved      = "tab.removed"
	EventTabNavigated    = "tab.navigated"
)

type Handler func(v interface{})

type Bus interface {
	Broadcast(channel string, value interface{})
	Subscribe(channel string, handler Handler)
}

// WebhooksChangedData is broadcast after the persisted webhook record changed.
type WebhooksChangedData struct {
	Key string `json:"key"`
}

// TabData is broadcast when a tab closes or starts a new navigation.
type TabData struct {
	TabID model.TabID `json:"tab_id"`
	URL   string      `json:"url"`
}
