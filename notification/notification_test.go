package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookshot/config/modules"
	"go.uber.org/zap"
)

func TestFactory(t *testing.T) {
	f := NewFactory(&modules.NotificationConfig{Title: "HookShot", IconURL: "icons/icon48.png"})

	tests := []struct {
		n       *Notification
		kind    Kind
		message string
	}{
		{f.Success("Slack"), KindSuccess, "Content sent to Slack"},
		{f.ConfigError("Slack", 404), KindConfigError, "Webhook Slack rejected the request (HTTP 404). Check its URL and configuration."},
		{f.Timeout("Slack"), KindTimeout, "Request to Slack timed out"},
		{f.Failure("Slack", 3), KindFailure, "Failed to send to Slack after 3 attempts"},
		{f.NoContent(), KindNoContent, "No content selected"},
		{f.CaptureError("tab not found"), KindCaptureErr, "Could not capture the selection: tab not found"},
	}
	for _, test := range tests {
		assert.Equal(t, test.kind, test.n.Kind)
		assert.Equal(t, test.message, test.n.Message)
		assert.Equal(t, "HookShot", test.n.Title)
		assert.Equal(t, "icons/icon48.png", test.n.IconURL)
		assert.False(t, test.n.CreatedAt.IsZero())
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(2)
	f := NewFactory(&modules.NotificationConfig{})
	for i := 0; i < 3; i++ {
		r.Notify(context.Background(), f.Success(fmt.Sprintf("w%d", i)))
	}

	list := r.List()
	assert.Len(t, list, 2)
	assert.Equal(t, "w1", list[0].Webhook)
	assert.Equal(t, "w2", list[1].Webhook)

	disabled := NewRecorder(0)
	disabled.Notify(context.Background(), f.NoContent())
	assert.Empty(t, disabled.List())
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(10), NewRecorder(10)
	m := Multi{a, b, NewLogNotifier(zap.S())}
	m.Notify(context.Background(), NewFactory(&modules.NotificationConfig{}).Timeout("Slack"))
	assert.Len(t, a.List(), 1)
	assert.Len(t, b.List(), 1)
}

func TestNotificationJSON(t *testing.T) {
	n := NewFactory(&modules.NotificationConfig{}).Success("Slack")
	b, err := json.Marshal(n)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, n.CreatedAt.Format(time.RFC3339Nano), fields["created_at"])
}
