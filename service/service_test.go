package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookshot/pkg/errs"
	"github.com/webhookx-io/hookshot/pkg/kv"
	"github.com/webhookx-io/hookshot/store"
	"github.com/webhookx-io/hookshot/utils"
	"go.uber.org/zap"
)

type flakyKV struct {
	kv.KV
	fail bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("storage unavailable")
	}
	return f.KV.Set(ctx, key, value)
}

func newService() (*Service, *store.Store, *flakyKV) {
	backend := &flakyKV{KV: kv.NewMemory()}
	s := store.New(backend, zap.S())
	return NewService(s, zap.S()), s, backend
}

func TestCreate(t *testing.T) {
	svc, s, _ := newService()

	w, err := svc.Create(context.Background(), &CreateWebhook{Name: "  Slack ", URL: "https://hooks.example.com/slack"})
	require.NoError(t, err)
	assert.Equal(t, "Slack", w.Name)
	assert.True(t, utils.IsValidUUID(w.ID))
	assert.False(t, w.CreatedAt.IsZero())

	got, err := s.GetByID(w.ID)
	require.NoError(t, err)
	assert.Equal(t, *w, got)
}

func TestCreateValidation(t *testing.T) {
	svc, s, _ := newService()

	tests := []struct {
		req    CreateWebhook
		fields map[string]interface{}
	}{
		{CreateWebhook{Name: "", URL: "https://example.com"}, map[string]interface{}{"name": "required field missing"}},
		{CreateWebhook{Name: "x", URL: ""}, map[string]interface{}{"url": "required field missing"}},
		{CreateWebhook{Name: "x", URL: "ftp://example.com"}, map[string]interface{}{"url": "must be an absolute http or https URL"}},
		{CreateWebhook{Name: "x", URL: "/relative"}, map[string]interface{}{"url": "must be an absolute http or https URL"}},
	}
	for _, test := range tests {
		_, err := svc.Create(context.Background(), &test.req)
		var verr *errs.ValidateError
		require.True(t, errors.As(err, &verr), "%+v", test.req)
		assert.Equal(t, test.fields, verr.Fields)
	}
	assert.Empty(t, s.List())
}

func TestCreateLimit(t *testing.T) {
	svc, s, backend := newService()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), &CreateWebhook{Name: fmt.Sprintf("hook%d", i), URL: "https://example.com"})
		require.NoError(t, err)
	}
	before := s.List()

	_, err := svc.Create(context.Background(), &CreateWebhook{Name: "fourth", URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, before, s.List())

	reloaded, err := store.New(backend.KV, zap.S()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, reloaded, 3)
}

func TestCreateDuplicateName(t *testing.T) {
	svc, s, _ := newService()
	_, err := svc.Create(context.Background(), &CreateWebhook{Name: "Slack", URL: "https://example.com/a"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CreateWebhook{Name: "SLACK", URL: "https://example.com/b"})
	var verr *errs.ValidateError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ErrDuplicateName.Error(), verr.Fields["name"])
	assert.Len(t, s.List(), 1)
}

func TestCreateSaveFailure(t *testing.T) {
	svc, s, backend := newService()
	_, err := svc.Create(context.Background(), &CreateWebhook{Name: "Slack", URL: "https://example.com/a"})
	require.NoError(t, err)

	backend.fail = true
	_, err = svc.Create(context.Background(), &CreateWebhook{Name: "Notion", URL: "https://example.com/b"})
	assert.Error(t, err)
	assert.Len(t, s.List(), 1)
	assert.Equal(t, "Slack", s.List()[0].Name)
}

func TestDelete(t *testing.T) {
	svc, s, backend := newService()
	a, err := svc.Create(context.Background(), &CreateWebhook{Name: "A", URL: "https://example.com/a"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), &CreateWebhook{Name: "B", URL: "https://example.com/b"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), store.ErrNotFound)

	backend.fail = true
	assert.Error(t, svc.Delete(context.Background(), a.ID))
	assert.Len(t, s.List(), 2)

	backend.fail = false
	require.NoError(t, svc.Delete(context.Background(), a.ID))
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestResolve(t *testing.T) {
	svc, _, _ := newService()
	w, err := svc.Create(context.Background(), &CreateWebhook{Name: "Slack", URL: "https://example.com/a"})
	require.NoError(t, err)

	byID, err := svc.Resolve(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, byID.ID)

	byName, err := svc.Resolve(context.Background(), "slack")
	require.NoError(t, err)
	assert.Equal(t, w.ID, byName.ID)

	_, err = svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
