package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
	"github.com/webhookx-io/hookshot/pkg/safe"
	"go.uber.org/zap"
)

// EventBus is the in-process bus. Handlers run asynchronously and a panic in
// one handler is logged without affecting the others.
type EventBus struct {
	log *zap.SugaredLogger
	bus evbus.Bus
}

func NewEventBus(log *zap.SugaredLogger) *EventBus {
	return &EventBus{
		log: log,
		bus: evbus.New(),
	}
}

func (b *EventBus) Broadcast(channel string, value interface{}) {
	b.log.Debugf("broadcasting %s: %+v", channel, value)
	b.bus.Publish(channel, value)
}

func (b *EventBus) Subscribe(channel string, handler Handler) {
	fn := func(v interface{}) {
		defer safe.Recover("event handler " + channel)
		handler(v)
	}
	if err := b.bus.SubscribeAsync(channel, fn, false); err != nil {
		b.log.Errorf("failed to subscribe %s: %v", channel, err)
	}
}

// Wait blocks until all asynchronous handlers have returned.
func (b *EventBus) Wait() {
	b.bus.WaitAsync()
}
