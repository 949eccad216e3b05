// Package dispatcher handles clicks on the per-webhook menu items.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/browser"
	"github.com/webhookx-io/hookshot/menu"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/notification"
	"github.com/webhookx-io/hookshot/pkg/metrics"
	"github.com/webhookx-io/hookshot/store"
	"github.com/webhookx-io/hookshot/worker"
	"go.uber.org/zap"
)

var ErrUnknownMenuItem = errors.New("unknown menu item")

type Outcome string

const (
	OutcomeNoContent    Outcome = "no_content"
	OutcomeCaptureError Outcome = "capture_error"
)

// Liveness guarantees a responsive capture agent in a tab.
type Liveness interface {
	EnsureReady(ctx context.Context, tab model.TabID) bool
}

type Deliverer interface {
	Deliver(ctx context.Context, target model.WebhookTarget, content *model.CapturedContent, page model.PageInfo) *worker.Result
}

type Result struct {
	Webhook  string         `json:"webhook"`
	Outcome  Outcome        `json:"outcome"`
	Error    string         `json:"error,omitempty"`
	Delivery *worker.Result `json:"delivery,omitempty"`
}

type Dispatcher struct {
	store     *store.Store
	liveness  Liveness
	channel   browser.Channel
	deliverer Deliverer
	notifier  notification.Notifier
	messages  *notification.Factory
	metrics   *metrics.Metrics
	log       *zap.SugaredLogger
}

func NewDispatcher(store *store.Store,
	liveness Liveness,
	channel browser.Channel,
	deliverer Deliverer,
	notifier notification.Notifier,
	messages *notification.Factory,
	metrics *metrics.Metrics,
	log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		liveness:  liveness,
		channel:   channel,
		deliverer: deliverer,
		notifier:  notifier,
		messages:  messages,
		metrics:   metrics,
		log:       log,
	}
}

// Click captures the selection in tab and delivers it to the webhook behind
// itemID. Failures after the webhook is resolved are reported through a
// notification and the returned Result, never as an error.
func (d *Dispatcher) Click(ctx context.Context, itemID string, tab model.TabID) (result *Result, err error) {
	webhookID, ok := menu.WebhookID(itemID)
	if !ok {
		return nil, ErrUnknownMenuItem
	}
	if !d.store.Loaded() {
		if _, err := d.store.Load(ctx); err != nil {
			return nil, err
		}
	}
	target, err := d.store.GetByID(webhookID)
	if err != nil {
		d.log.Errorf("webhook not found: %s", webhookID)
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("panic while handling click on %s: %v", itemID, r)
			result = d.captureError(ctx, target, fmt.Sprintf("%v", r))
		}
	}()

	d.log.Infof("capturing selection in tab %s for %s", tab, target.Name)

	if !d.liveness.EnsureReady(ctx, tab) {
		return d.captureError(ctx, target, "capture agent is not available in this tab"), nil
	}

	res, err := d.channel.Send(ctx, tab, agent.CaptureRequest)
	if err != nil {
		// covers a tab that navigated away after the agent answered
		return d.captureError(ctx, target, err.Error()), nil
	}
	if res.Error != "" {
		return d.captureError(ctx, target, res.Error), nil
	}
	if res.Content == nil {
		d.metrics.CaptureCounter.With("result", string(OutcomeNoContent)).Add(1)
		d.notifier.Notify(ctx, d.messages.NoContent())
		return &Result{Webhook: target.Name, Outcome: OutcomeNoContent}, nil
	}
	d.metrics.CaptureCounter.With("result", "captured").Add(1)

	page := model.PageInfo{URL: res.Content.URL, Title: res.Content.Title}
	delivery := d.deliverer.Deliver(ctx, target, res.Content, page)
	return &Result{
		Webhook:  target.Name,
		Outcome:  Outcome(delivery.Outcome),
		Delivery: delivery,
	}, nil
}

func (d *Dispatcher) captureError(ctx context.Context, target model.WebhookTarget, reason string) *Result {
	d.log.Warnf("failed to capture content for %s: %s", target.Name, reason)
	d.metrics.CaptureCounter.With("result", string(OutcomeCaptureError)).Add(1)
	d.notifier.Notify(ctx, d.messages.CaptureError(reason))
	return &Result{Webhook: target.Name, Outcome: OutcomeCaptureError, Error: reason}
}
