package api

import (
	"net/http"

	"github.com/webhookx-io/hookshot"
	"github.com/webhookx-io/hookshot/config"
)

type IndexResponse struct {
	Version       string         `json:"version"`
	Commit        string         `json:"commit"`
	Message       string         `json:"message"`
	Configuration *config.Config `json:"configuration"`
}

func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	var response IndexResponse

	response.Version = hookshot.VERSION
	response.Commit = hookshot.COMMIT
	response.Message = "Welcome to HookShot"
	response.Configuration = api.cfg

	api.json(200, w, response)
}
