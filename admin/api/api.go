package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/webhookx-io/hookshot/config"
	"github.com/webhookx-io/hookshot/dispatcher"
	"github.com/webhookx-io/hookshot/menu"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/notification"
	"github.com/webhookx-io/hookshot/pkg/errs"
	"github.com/webhookx-io/hookshot/pkg/http/middlewares"
	"github.com/webhookx-io/hookshot/pkg/http/response"
	"github.com/webhookx-io/hookshot/service"
)

const MsgNotFound = "not found"

type Clicker interface {
	Click(ctx context.Context, itemID string, tab model.TabID) (*dispatcher.Result, error)
}

type MenuSource interface {
	Items() []menu.Item
}

type NotificationSource interface {
	List() []*notification.Notification
}

type API struct {
	cfg           *config.Config
	srv           *service.Service
	clicker       Clicker
	menus         MenuSource
	notifications NotificationSource
	middlewares   []mux.MiddlewareFunc
}

type Options struct {
	Config        *config.Config
	Service       *service.Service
	Clicker       Clicker
	Menus         MenuSource
	Notifications NotificationSource
	Middlewares   []mux.MiddlewareFunc
}

func NewAPI(opts Options) *API {
	return &API{
		cfg:           opts.Config,
		srv:           opts.Service,
		clicker:       opts.Clicker,
		menus:         opts.Menus,
		notifications: opts.Notifications,
		middlewares:   opts.Middlewares,
	}
}

// param returns the value of an url variable
func (api *API) param(r *http.Request, variable string) string {
	return mux.Vars(r)[variable]
}

func (api *API) json(code int, w http.ResponseWriter, data interface{}) {
	response.JSON(w, code, data)
}

func (api *API) error(code int, w http.ResponseWriter, err error) {
	var verr *errs.ValidateError
	if errors.As(err, &verr) {
		api.json(code, w, response.ErrorResponse{
			Message: "Request Validation",
			Error:   verr,
		})
		return
	}
	api.json(code, w, response.ErrorResponse{Message: err.Error()})
}

func (api *API) assert(err error) {
	if err != nil {
		panic(err)
	}
}

// Handler returns a http.Handler
func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, response.ErrorResponse{Message: MsgNotFound})
	})

	for _, m := range api.middlewares {
		r.Use(m)
	}
	r.Use(middlewares.PanicRecovery)

	r.HandleFunc("/", api.Index).Methods("GET")

	if api.cfg.Admin.DebugEndpoints {
		r.HandleFunc("/debug/pprof/profile", pprof.Profile).Methods("GET")
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol).Methods("GET")
		r.HandleFunc("/debug/pprof/trace", pprof.Trace).Methods("GET")
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline).Methods("GET")
		r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index).Methods("GET")
	}

	r.HandleFunc("/webhooks", api.ListWebhooks).Methods("GET")
	r.HandleFunc("/webhooks", api.CreateWebhook).Methods("POST")
	r.HandleFunc("/webhooks/{id}", api.GetWebhook).Methods("GET")
	r.HandleFunc("/webhooks/{id}", api.DeleteWebhook).Methods("DELETE")

	r.HandleFunc("/menus", api.ListMenus).Methods("GET")
	r.HandleFunc("/menus/{id}/click", api.ClickMenu).Methods("POST")

	r.HandleFunc("/notifications", api.ListNotifications).Methods("GET")

	return r
}
