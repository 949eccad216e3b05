package constants

import (
	"time"

	"github.com/webhookx-io/hookshot"
)

// Storage
const (
	WebhooksKey   = "webhooks"
	MaxWebhooks   = 3
	ChangeChannel = "hookshot:changes"
)

// Context menu
const (
	MenuParentID     = "hookshot-main"
	MenuItemIDPrefix = "send-to-"
	MenuContext      = "selection"
)

// Capture
const (
	MaxDataURLLength = 100_000
)

// Delivery
const (
	DefaultDeliveryTimeout = 10 * time.Second
	DefaultBackoffBase     = time.Second
	DefaultMaxAttempts     = 3
)

type Header struct {
	Name  string
	Value string
}

var (
	UserAgent              = "HookShot/" + hookshot.VERSION
	DefaultResponseHeaders = []Header{
		{Name: "Server", Value: UserAgent},
	}
	DefaultDelivererRequestHeaders = []Header{
		{Name: "User-Agent", Value: UserAgent},
		{Name: "Content-Type", Value: "application/json"},
	}
)
