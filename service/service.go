// Package service implements the webhook configuration operations behind the
// admin API and the CLI.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/webhookx-io/hookshot/constants"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/pkg/errs"
	"github.com/webhookx-io/hookshot/store"
	"github.com/webhookx-io/hookshot/utils"
	"go.uber.org/zap"
)

var (
	ErrLimitReached  = fmt.Errorf("a maximum of %d webhooks can be configured", constants.MaxWebhooks)
	ErrDuplicateName = errors.New("a webhook with this name already exists")
)

type CreateWebhook struct {
	Name string `json:"name" validate:"required,max=64"`
	URL  string `json:"url" validate:"required,http_url"`
}

type Service struct {
	log   *zap.SugaredLogger
	store *store.Store
	now   func() time.Time

	mux sync.Mutex
}

func NewService(store *store.Store, log *zap.SugaredLogger) *Service {
	return &Service{
		log:   log,
		store: store,
		now:   time.Now,
	}
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.store.Loaded() {
		return nil
	}
	_, err := s.store.Load(ctx)
	return err
}

func (s *Service) List(ctx context.Context) ([]model.WebhookTarget, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	list := s.store.List()
	if list == nil {
		list = []model.WebhookTarget{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.WebhookTarget, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	w, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create validates req against the current list and appends the new target.
// The list is left untouched when validation or the save fails.
func (s *Service) Create(ctx context.Context, req *CreateWebhook) (*model.WebhookTarget, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	state := model.WebhookStoreState{Webhooks: s.store.List()}
	if len(state.Webhooks) >= constants.MaxWebhooks {
		return nil, errs.NewValidateError(ErrLimitReached)
	}
	if _, exists := state.FindByName(req.Name); exists {
		return nil, errs.NewValidateFieldsError(errs.ErrRequestValidate, map[string]interface{}{
			"name": ErrDuplicateName.Error(),
		})
	}

	webhook := model.WebhookTarget{
		ID:        utils.UUID(),
		Name:      req.Name,
		URL:       req.URL,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, append(state.Webhooks, webhook)); err != nil {
		return nil, errors.Wrap(err, "failed to save webhook")
	}
	s.log.Infof("webhook %s created", webhook.Name)
	return &webhook, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	webhooks := s.store.List()
	i := slices.IndexFunc(webhooks, func(w model.WebhookTarget) bool { return w.ID == id })
	if i == -1 {
		return store.ErrNotFound
	}
	name := webhooks[i].Name
	if err := s.store.Save(ctx, slices.Delete(webhooks, i, i+1)); err != nil {
		return errors.Wrap(err, "failed to delete webhook")
	}
	s.log.Infof("webhook %s deleted", name)
	return nil
}

// Resolve finds a webhook by id or, failing that, by name.
func (s *Service) Resolve(ctx context.Context, ref string) (*model.WebhookTarget, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	state := model.WebhookStoreState{Webhooks: s.store.List()}
	if w, ok := state.Find(ref); ok {
		return &w, nil
	}
	if w, ok := state.FindByName(ref); ok {
		return &w, nil
	}
	return nil, store.ErrNotFound
}
