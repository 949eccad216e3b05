package kv

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/hookshot/pkg/serializer"
	"github.com/webhookx-io/hookshot/utils"
	"go.uber.org/zap"
)

// change is published on every write so other processes can reload.
type change struct {
	Key  string `json:"key"`
	Node string `json:"node"`
	Time int64  `json:"time"`
}

// Redis stores records as plain keys and announces writes over pub/sub.
type Redis struct {
	client  *redis.Client
	log     *zap.SugaredLogger
	prefix  string
	channel string
	nodeID  string
	s       serializer.Serializer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	pubsub *redis.PubSub
	watchers
}

func NewRedis(client *redis.Client, prefix string, channel string, log *zap.SugaredLogger) *Redis {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Redis{
		client:  client,
		log:     log,
		prefix:  prefix,
		channel: prefix + channel,
		nodeID:  utils.UUIDShort(),
		s:       serializer.MsgPack,
		ctx:     ctx,
		cancel:  cancel,
	}
	r.pubsub = client.Subscribe(ctx, r.channel)
	r.wg.Add(1)
	go r.listen()
	return r
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get record %q", key)
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	msg, err := r.s.Serialize(&change{Key: key, Node: r.nodeID, Time: time.Now().UnixMilli()})
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.prefix+key, value, 0)
		pipe.Publish(ctx, r.channel, msg)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to set record %q", key)
	}

	r.fire(key)
	return nil
}

func (r *Redis) Watch(fn WatchFunc) {
	r.add(fn)
}

func (r *Redis) Close() error {
	r.cancel()
	err := r.pubsub.Close()
	r.wg.Wait()
	return err
}

func (r *Redis) listen() {
	defer r.wg.Done()

	ch := r.pubsub.Channel()
	for {
		select {
		case <-r.ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var c change
			if err := r.s.Deserialize([]byte(m.Payload), &c); err != nil {
				r.log.Errorf("failed to decode change message: %v", err)
				continue
			}
			if c.Node == r.nodeID {
				continue
			}
			r.log.Debugf("record %q changed by node %s", c.Key, c.Node)
			r.fire(c.Key)
		}
	}
}
