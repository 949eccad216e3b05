package tabs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/browser"
	"github.com/webhookx-io/hookshot/browser/mock"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/model"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

var (
	pong       = &agent.Response{Pong: true}
	errNoAgent = errors.New("could not establish connection")
)

func newManager(t *testing.T) (*Manager, *mock.MockChannel) {
	ctrl := gomock.NewController(t)
	channel := mock.NewMockChannel(ctrl)
	cfg := &modules.BrowserConfig{
		SettleDelay:       1,
		CacheSize:         8,
		PrivilegedSchemes: modules.DefaultPrivilegedSchemes,
	}
	m, err := NewManager(channel, cfg, zap.S())
	require.NoError(t, err)
	return m, channel
}

func TestEnsureReadyFirstProbe(t *testing.T) {
	m, channel := newManager(t)
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(pong, nil)

	assert.True(t, m.EnsureReady(context.Background(), "t1"))
	assert.True(t, m.IsLive("t1"))
}

func TestEnsureReadyInjects(t *testing.T) {
	m, channel := newManager(t)
	gomock.InOrder(
		channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent),
		channel.EXPECT().Tab(gomock.Any(), model.TabID("t1")).Return(&model.Tab{ID: "t1", URL: "https://example.com"}, nil),
		channel.EXPECT().Inject(gomock.Any(), model.TabID("t1")).Return(nil),
		channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(pong, nil),
	)
	assert.True(t, m.EnsureReady(context.Background(), "t1"))
	assert.True(t, m.IsLive("t1"))

	// cached: probe again, no injection
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(pong, nil)
	assert.True(t, m.EnsureReady(context.Background(), "t1"))
}

func TestEnsureReadyCachedProbeFails(t *testing.T) {
	m, channel := newManager(t)
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(pong, nil)
	require.True(t, m.EnsureReady(context.Background(), "t1"))

	gomock.InOrder(
		channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent),
		channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent),
		channel.EXPECT().Tab(gomock.Any(), model.TabID("t1")).Return(&model.Tab{ID: "t1", URL: "https://example.com/next"}, nil),
		channel.EXPECT().Inject(gomock.Any(), model.TabID("t1")).Return(nil),
		channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(pong, nil),
	)
	assert.True(t, m.EnsureReady(context.Background(), "t1"))
	assert.True(t, m.IsLive("t1"))
}

func TestEnsureReadyPrivileged(t *testing.T) {
	for _, url := range []string{"chrome://settings", "chrome-extension://abc/options.html", "edge://flags", "devtools://devtools"} {
		m, channel := newManager(t)
		channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent)
		channel.EXPECT().Tab(gomock.Any(), model.TabID("t1")).Return(&model.Tab{ID: "t1", URL: url}, nil)

		assert.False(t, m.EnsureReady(context.Background(), "t1"), url)
		assert.False(t, m.IsLive("t1"))
	}
}

func TestEnsureReadyMissingTab(t *testing.T) {
	m, channel := newManager(t)
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent)
	channel.EXPECT().Tab(gomock.Any(), model.TabID("t1")).Return(nil, browser.ErrTabNotFound)

	assert.False(t, m.EnsureReady(context.Background(), "t1"))
}

func TestEnsureReadyInjectFails(t *testing.T) {
	m, channel := newManager(t)
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent)
	channel.EXPECT().Tab(gomock.Any(), model.TabID("t1")).Return(&model.Tab{ID: "t1", URL: "https://example.com"}, nil)
	channel.EXPECT().Inject(gomock.Any(), model.TabID("t1")).Return(errors.New("cannot access contents"))

	assert.False(t, m.EnsureReady(context.Background(), "t1"))
}

func TestEnsureReadyNoAnswerAfterInjection(t *testing.T) {
	m, channel := newManager(t)
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(nil, errNoAgent).Times(2)
	channel.EXPECT().Tab(gomock.Any(), model.TabID("t1")).Return(&model.Tab{ID: "t1", URL: "https://example.com"}, nil)
	channel.EXPECT().Inject(gomock.Any(), model.TabID("t1")).Return(nil)

	assert.False(t, m.EnsureReady(context.Background(), "t1"))
	assert.False(t, m.IsLive("t1"))
}

func TestForget(t *testing.T) {
	m, channel := newManager(t)
	channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.PingRequest).Return(pong, nil)
	require.True(t, m.EnsureReady(context.Background(), "t1"))

	m.Forget("t1")
	assert.False(t, m.IsLive("t1"))
	m.Forget("unknown")
}
