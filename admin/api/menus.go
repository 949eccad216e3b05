package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/webhookx-io/hookshot/dispatcher"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/pkg/errs"
	"github.com/webhookx-io/hookshot/store"
)

type ClickRequest struct {
	TabID string `json:"tab_id"`
}

func (api *API) ListMenus(w http.ResponseWriter, r *http.Request) {
	api.json(200, w, api.menus.Items())
}

// ClickMenu simulates a click on a menu item. It blocks until the capture
// and delivery finish and responds with their result.
func (api *API) ClickMenu(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.error(400, w, err)
		return
	}
	if req.TabID == "" {
		api.error(400, w, errs.NewValidateFieldsError(errs.ErrRequestValidate, map[string]interface{}{
			"tab_id": "required field missing",
		}))
		return
	}

	result, err := api.clicker.Click(r.Context(), api.param(r, "id"), model.TabID(req.TabID))
	if errors.Is(err, dispatcher.ErrUnknownMenuItem) || errors.Is(err, store.ErrNotFound) {
		api.error(404, w, err)
		return
	}
	api.assert(err)

	api.json(200, w, result)
}

func (api *API) ListNotifications(w http.ResponseWriter, r *http.Request) {
	api.json(200, w, api.notifications.List())
}
