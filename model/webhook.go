package model

import (
	"slices"
	"strings"
	"time"
)

// WebhookTarget is a user-configured endpoint selected content is posted to.
// Targets are never mutated in place.
type WebhookTarget struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

type WebhookStoreState struct {
	Webhooks []WebhookTarget `json:"webhooks"`
}

// Clone returns a copy that shares no backing array with s.
func (s WebhookStoreState) Clone() WebhookStoreState {
	return WebhookStoreState{Webhooks: slices.Clone(s.Webhooks)}
}

func (s WebhookStoreState) Find(id string) (WebhookTarget, bool) {
	for _, w := range s.Webhooks {
		if w.ID == id {
			return w, true
		}
	}
	return WebhookTarget{}, false
}

// FindByName matches case-insensitively.
func (s WebhookStoreState) FindByName(name string) (WebhookTarget, bool) {
	for _, w := range s.Webhooks {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return WebhookTarget{}, false
}
