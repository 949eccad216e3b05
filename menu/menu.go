// Package menu derives the selection context menu from the webhook list.
package menu

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/constants"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Item struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parent_id,omitempty"`
	Title    string   `json:"title"`
	Contexts []string `json:"contexts"`
}

// Surface is where menu items are shown.
type Surface interface {
	// RemoveAll removes every item owned by this process. Removing from an
	// empty surface is not an error.
	RemoveAll(ctx context.Context) error
	Create(ctx context.Context, item Item) error
}

// ItemID is the menu item id of the entry that sends to webhookID.
func ItemID(webhookID string) string {
	return constants.MenuItemIDPrefix + webhookID
}

// WebhookID recovers the webhook id from a menu item id.
func WebhookID(itemID string) (string, bool) {
	id, ok := strings.CutPrefix(itemID, constants.MenuItemIDPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Items builds the menu tree for webhooks: nothing for an empty list,
// otherwise one parent followed by one child per webhook.
func Items(title string, webhooks []model.WebhookTarget) []Item {
	if len(webhooks) == 0 {
		return nil
	}
	contexts := []string{constants.MenuContext}
	items := make([]Item, 0, len(webhooks)+1)
	items = append(items, Item{
		ID:       constants.MenuParentID,
		Title:    title,
		Contexts: contexts,
	})
	for _, w := range webhooks {
		items = append(items, Item{
			ID:       ItemID(w.ID),
			ParentID: constants.MenuParentID,
			Title:    w.Name,
			Contexts: contexts,
		})
	}
	return items
}

type Controller struct {
	surface Surface
	title   string
	settle  time.Duration
	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	group singleflight.Group
}

func NewController(surface Surface, cfg *modules.MenuConfig, metrics *metrics.Metrics, log *zap.SugaredLogger) *Controller {
	return &Controller{
		surface: surface,
		title:   cfg.Title,
		settle:  time.Duration(cfg.SettleDelay) * time.Millisecond,
		log:     log,
		metrics: metrics,
	}
}

// Rebuild replaces the menu with the tree for webhooks. A call made while a
// rebuild is running waits for that rebuild and shares its result instead
// of starting another one.
func (c *Controller) Rebuild(ctx context.Context, webhooks []model.WebhookTarget) error {
	_, err, shared := c.group.Do("rebuild", func() (interface{}, error) {
		return nil, c.rebuild(ctx, webhooks)
	})
	if shared {
		c.log.Debug("joined in-flight menu rebuild")
	}
	return err
}

func (c *Controller) rebuild(ctx context.Context, webhooks []model.WebhookTarget) error {
	if err := c.surface.RemoveAll(ctx); err != nil {
		c.log.Warnf("failed to remove menu items: %v", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.settle):
	}

	var errs []error
	for _, item := range Items(c.title, webhooks) {
		if err := c.surface.Create(ctx, item); err != nil {
			c.log.Errorf("failed to create menu item %s: %v", item.ID, err)
			errs = append(errs, err)
		}
	}
	c.metrics.MenuRebuildCounter.Add(1)
	c.log.Debugf("menu rebuilt with %d webhooks", len(webhooks))
	return errors.Join(errs...)
}
