// Package store holds the cached list of webhook targets backed by a durable
// KV record.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/webhookx-io/hookshot/constants"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/pkg/kv"
	"github.com/webhookx-io/hookshot/pkg/serializer"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("webhook not found")

type Store struct {
	kv    kv.KV
	key   string
	codec serializer.Serializer
	log   *zap.SugaredLogger

	group singleflight.Group

	mux    sync.RWMutex
	state  model.WebhookStoreState
	loaded bool
}

func New(kv kv.KV, log *zap.SugaredLogger) *Store {
	return &Store{
		kv:    kv,
		key:   constants.WebhooksKey,
		codec: serializer.JSON,
		log:   log,
	}
}

// Load fetches the persisted list and replaces the cache. Callers arriving
// while a load is in flight share its result instead of fetching again.
// On failure the cache keeps its previous value.
func (s *Store) Load(ctx context.Context) ([]model.WebhookTarget, error) {
	v, err, shared := s.group.Do(s.key, func() (interface{}, error) {
		webhooks, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.mux.Lock()
		s.state = model.WebhookStoreState{Webhooks: webhooks}
		s.loaded = true
		s.mux.Unlock()
		s.log.Debugf("loaded %d webhooks", len(webhooks))
		return webhooks, nil
	})
	if err != nil {
		s.log.Errorf("failed to load webhooks: %v", err)
		return nil, err
	}
	if shared {
		s.log.Debug("joined in-flight webhook load")
	}
	return slices.Clone(v.([]model.WebhookTarget)), nil
}

func (s *Store) fetch(ctx context.Context) ([]model.WebhookTarget, error) {
	b, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []model.WebhookTarget{}, nil
		}
		return nil, err
	}
	var webhooks []model.WebhookTarget
	if err := s.codec.Deserialize(b, &webhooks); err != nil {
		return nil, errors.Wrap(err, "failed to decode webhooks")
	}
	if webhooks == nil {
		webhooks = []model.WebhookTarget{}
	}
	return webhooks, nil
}

// Save persists the full list atomically. The cache is replaced only after
// the write succeeded, so a failed save leaves the previous list in place.
func (s *Store) Save(ctx context.Context, webhooks []model.WebhookTarget) error {
	if webhooks == nil {
		webhooks = []model.WebhookTarget{}
	}
	b, err := s.codec.Serialize(webhooks)
	if err != nil {
		return errors.Wrap(err, "failed to encode webhooks")
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		s.log.Errorf("failed to save webhooks: %v", err)
		return err
	}

	s.mux.Lock()
	s.state = model.WebhookStoreState{Webhooks: slices.Clone(webhooks)}
	s.loaded = true
	s.mux.Unlock()
	return nil
}

func (s *Store) GetByID(id string) (model.WebhookTarget, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if w, ok := s.state.Find(id); ok {
		return w, nil
	}
	return model.WebhookTarget{}, ErrNotFound
}

// List returns a snapshot of the cached list.
func (s *Store) List() []model.WebhookTarget {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.state.Clone().Webhooks
}

func (s *Store) Loaded() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.loaded
}
