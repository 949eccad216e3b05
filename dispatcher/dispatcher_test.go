package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/browser/mock"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/notification"
	"github.com/webhookx-io/hookshot/pkg/kv"
	"github.com/webhookx-io/hookshot/pkg/metrics"
	"github.com/webhookx-io/hookshot/store"
	"github.com/webhookx-io/hookshot/worker"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeLiveness struct {
	ready bool
	tabs  []model.TabID
}

func (f *fakeLiveness) EnsureReady(ctx context.Context, tab model.TabID) bool {
	f.tabs = append(f.tabs, tab)
	return f.ready
}

type fakeDeliverer struct {
	calls   int
	target  model.WebhookTarget
	content *model.CapturedContent
	page    model.PageInfo
}

func (f *fakeDeliverer) Deliver(ctx context.Context, target model.WebhookTarget, content *model.CapturedContent, page model.PageInfo) *worker.Result {
	f.calls++
	f.target, f.content, f.page = target, content, page
	return &worker.Result{Outcome: worker.OutcomeSuccess, Attempts: 1, StatusCode: 200}
}

type fixture struct {
	dispatcher *Dispatcher
	channel    *mock.MockChannel
	liveness   *fakeLiveness
	deliverer  *fakeDeliverer
	recorder   *notification.Recorder
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	s := store.New(kv.NewMemory(), zap.S())
	require.NoError(t, s.Save(context.Background(), []model.WebhookTarget{
		{ID: "w1", Name: "Slack", URL: "https://hooks.example.com/slack"},
	}))

	f := &fixture{
		channel:   mock.NewMockChannel(ctrl),
		liveness:  &fakeLiveness{ready: true},
		deliverer: &fakeDeliverer{},
		recorder:  notification.NewRecorder(10),
	}
	f.dispatcher = NewDispatcher(s, f.liveness, f.channel, f.deliverer, f.recorder,
		notification.NewFactory(&modules.NotificationConfig{Title: "HookShot"}), metrics.NewNop(), zap.S())
	return f
}

func TestClickDelivers(t *testing.T) {
	f := newFixture(t)
	content := &model.CapturedContent{Text: "hello", URL: "https://example.com", Title: "Example"}
	f.channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.CaptureRequest).
		Return(&agent.Response{Content: content, Success: true}, nil)

	result, err := f.dispatcher.Click(context.Background(), "send-to-w1", "t1")
	require.NoError(t, err)
	assert.Equal(t, Outcome(worker.OutcomeSuccess), result.Outcome)
	assert.Equal(t, "Slack", result.Webhook)
	assert.Equal(t, 1, f.deliverer.calls)
	assert.Equal(t, "w1", f.deliverer.target.ID)
	assert.Equal(t, content, f.deliverer.content)
	assert.Equal(t, model.PageInfo{URL: "https://example.com", Title: "Example"}, f.deliverer.page)
	assert.Equal(t, []model.TabID{"t1"}, f.liveness.tabs)
}

func TestClickNoContent(t *testing.T) {
	f := newFixture(t)
	f.channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.CaptureRequest).
		Return(&agent.Response{Success: true}, nil)

	result, err := f.dispatcher.Click(context.Background(), "send-to-w1", "t1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoContent, result.Outcome)
	assert.Zero(t, f.deliverer.calls)

	list := f.recorder.List()
	require.Len(t, list, 1)
	assert.Equal(t, notification.KindNoContent, list[0].Kind)
}

func TestClickAgentUnavailable(t *testing.T) {
	f := newFixture(t)
	f.liveness.ready = false

	result, err := f.dispatcher.Click(context.Background(), "send-to-w1", "t1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCaptureError, result.Outcome)
	assert.Zero(t, f.deliverer.calls)

	list := f.recorder.List()
	require.Len(t, list, 1)
	assert.Equal(t, notification.KindCaptureErr, list[0].Kind)
}

func TestClickNavigatedAway(t *testing.T) {
	f := newFixture(t)
	f.channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.CaptureRequest).
		Return(nil, errors.New("execution context was destroyed"))

	result, err := f.dispatcher.Click(context.Background(), "send-to-w1", "t1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCaptureError, result.Outcome)
	assert.Equal(t, "execution context was destroyed", result.Error)
	assert.Len(t, f.recorder.List(), 1)
}

func TestClickPageError(t *testing.T) {
	f := newFixture(t)
	f.channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.CaptureRequest).
		Return(&agent.Response{Error: "selection is gone"}, nil)

	result, err := f.dispatcher.Click(context.Background(), "send-to-w1", "t1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCaptureError, result.Outcome)
	assert.Zero(t, f.deliverer.calls)
}

func TestClickPanicRecovered(t *testing.T) {
	f := newFixture(t)
	f.channel.EXPECT().Send(gomock.Any(), model.TabID("t1"), agent.CaptureRequest).
		DoAndReturn(func(ctx context.Context, tab model.TabID, req *agent.Request) (*agent.Response, error) {
			panic("boom")
		})

	result, err := f.dispatcher.Click(context.Background(), "send-to-w1", "t1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCaptureError, result.Outcome)
	assert.Len(t, f.recorder.List(), 1)
}

func TestClickUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.Click(context.Background(), "hookshot-main", "t1")
	assert.ErrorIs(t, err, ErrUnknownMenuItem)

	_, err = f.dispatcher.Click(context.Background(), "send-to-missing", "t1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Empty(t, f.recorder.List())
	assert.Empty(t, f.liveness.tabs)
}
