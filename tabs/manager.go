// Package tabs makes sure a responsive capture agent is loaded in a tab
// before content is requested from it.
package tabs

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/browser"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/model"
	"go.uber.org/zap"
)

// Manager tracks which tabs are known to host a responsive agent. An entry
// is added only after a successful probe and is dropped when the tab closes
// or navigates.
type Manager struct {
	channel    browser.Channel
	live       *lru.Cache[model.TabID, struct{}]
	privileged []string
	settle     time.Duration
	log        *zap.SugaredLogger
}

func NewManager(channel browser.Channel, cfg *modules.BrowserConfig, log *zap.SugaredLogger) (*Manager, error) {
	cache, err := lru.New[model.TabID, struct{}](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Manager{
		channel:    channel,
		live:       cache,
		privileged: cfg.PrivilegedSchemes,
		settle:     time.Duration(cfg.SettleDelay) * time.Millisecond,
		log:        log,
	}, nil
}

// EnsureReady reports whether tab has a capture agent answering probes,
// injecting one when needed.
func (m *Manager) EnsureReady(ctx context.Context, tab model.TabID) bool {
	if m.live.Contains(tab) {
		if m.ping(ctx, tab) {
			return true
		}
		m.log.Debugf("cached agent in tab %s stopped answering", tab)
		m.live.Remove(tab)
	}

	if m.ping(ctx, tab) {
		m.live.Add(tab, struct{}{})
		return true
	}

	info, err := m.channel.Tab(ctx, tab)
	if err != nil {
		m.log.Warnf("failed to get tab %s: %v", tab, err)
		return false
	}
	if info.IsPrivileged(m.privileged) {
		m.log.Infof("tab %s shows privileged page %s", tab, info.URL)
		return false
	}

	if err := m.channel.Inject(ctx, tab); err != nil {
		m.log.Warnf("failed to inject capture agent into tab %s: %v", tab, err)
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(m.settle):
	}

	if m.ping(ctx, tab) {
		m.live.Add(tab, struct{}{})
		return true
	}
	m.log.Warnf("capture agent in tab %s did not answer after injection", tab)
	return false
}

// Forget drops the liveness entry of tab.
func (m *Manager) Forget(tab model.TabID) {
	if m.live.Remove(tab) {
		m.log.Debugf("forgot tab %s", tab)
	}
}

func (m *Manager) IsLive(tab model.TabID) bool {
	return m.live.Contains(tab)
}

func (m *Manager) ping(ctx context.Context, tab model.TabID) bool {
	res, err := m.channel.Send(ctx, tab, agent.PingRequest)
	return err == nil && res != nil && res.Pong
}
