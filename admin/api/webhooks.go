package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/webhookx-io/hookshot/service"
	"github.com/webhookx-io/hookshot/store"
)

func (api *API) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	list, err := api.srv.List(r.Context())
	api.assert(err)

	api.json(200, w, list)
}

func (api *API) GetWebhook(w http.ResponseWriter, r *http.Request) {
	webhook, err := api.srv.Get(r.Context(), api.param(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		api.error(404, w, errors.New(MsgNotFound))
		return
	}
	api.assert(err)

	api.json(200, w, webhook)
}

func (api *API) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateWebhook
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.error(400, w, err)
		return
	}

	webhook, err := api.srv.Create(r.Context(), &req)
	api.assert(err)

	api.json(201, w, webhook)
}

func (api *API) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	err := api.srv.Delete(r.Context(), api.param(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		api.error(404, w, errors.New(MsgNotFound))
		return
	}
	api.assert(err)

	w.WriteHeader(204)
}
