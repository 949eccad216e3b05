// Package notification delivers one-shot user notifications.
package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/webhookx-io/hookshot/config/modules"
	"go.uber.org/zap"
)

type Kind string

const (
	KindSuccess     Kind = "success"
	KindConfigError Kind = "config_error"
	KindTimeout     Kind = "timeout"
	KindFailure     Kind = "failure"
	KindNoContent   Kind = "no_content"
	KindCaptureErr  Kind = "capture_error"
)

type Notification struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	IconURL   string    `json:"icon_url"`
	Message   string    `json:"message"`
	Webhook   string    `json:"webhook,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n *Notification)
}

// Factory stamps notifications with the configured title and icon.
type Factory struct {
	title   string
	iconURL string
}

func NewFactory(cfg *modules.NotificationConfig) *Factory {
	return &Factory{title: cfg.Title, iconURL: cfg.IconURL}
}

func (f *Factory) new(kind Kind, webhook string, message string) *Notification {
	return &Notification{
		Kind:      kind,
		Title:     f.title,
		IconURL:   f.iconURL,
		Message:   message,
		Webhook:   webhook,
		CreatedAt: time.Now(),
	}
}

func (f *Factory) Success(webhook string) *Notification {
	return f.new(KindSuccess, webhook, fmt.Sprintf("Content sent to %s", webhook))
}

func (f *Factory) ConfigError(webhook string, status int) *Notification {
	return f.new(KindConfigError, webhook,
		fmt.Sprintf("Webhook %s rejected the request (HTTP %d). Check its URL and configuration.", webhook, status))
}

func (f *Factory) Timeout(webhook string) *Notification {
	return f.new(KindTimeout, webhook, fmt.Sprintf("Request to %s timed out", webhook))
}

func (f *Factory) Failure(webhook string, attempts int) *Notification {
	return f.new(KindFailure, webhook, fmt.Sprintf("Failed to send to %s after %d attempts", webhook, attempts))
}

func (f *Factory) NoContent() *Notification {
	return f.new(KindNoContent, "", "No content selected")
}

func (f *Factory) CaptureError(reason string) *Notification {
	return f.new(KindCaptureErr, "", fmt.Sprintf("Could not capture the selection: %s", reason))
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	log *zap.SugaredLogger
}

func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n *Notification) {
	switch n.Kind {
	case KindSuccess, KindNoContent:
		l.log.Infow(n.Message, "kind", n.Kind, "webhook", n.Webhook)
	default:
		l.log.Warnw(n.Message, "kind", n.Kind, "webhook", n.Webhook)
	}
}

// Recorder keeps the most recent notifications, newest last.
type Recorder struct {
	mux   sync.RWMutex
	size  int
	items []*Notification
}

func NewRecorder(size int) *Recorder {
	return &Recorder{size: size}
}

func (r *Recorder) Notify(_ context.Context, n *Notification) {
	if r.size <= 0 {
		return
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.items = append(r.items, n)
	if len(r.items) > r.size {
		r.items = r.items[len(r.items)-r.size:]
	}
}

func (r *Recorder) List() []*Notification {
	r.mux.RLock()
	defer r.mux.RUnlock()
	list := make([]*Notification, len(r.items))
	copy(list, r.items)
	return list
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n *Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}
