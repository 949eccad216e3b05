package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/webhookx-io/hookshot/config/modules"
	"go.uber.org/zap"
)

// Admin is an HTTP Server
type Admin struct {
	cfg *modules.AdminConfig
	s   *http.Server
	log *zap.SugaredLogger
}

func NewAdmin(cfg modules.AdminConfig, handler http.Handler, log *zap.SugaredLogger) *Admin {
	s := &http.Server{
		Handler: handler,
		Addr:    cfg.Listen,

		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	admin := &Admin{
		cfg: &cfg,
		s:   s,
		log: log,
	}

	return admin
}

// Start binds the listener and serves in the background.
func (a *Admin) Start() error {
	l, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return err
	}
	go func() {
		tls := a.cfg.TLS
		if tls.Enabled() {
			err = a.s.ServeTLS(l, tls.Cert, tls.Key)
		} else {
			err = a.s.Serve(l)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Errorf("admin server stopped: %v", err)
		}
	}()
	a.log.Infof("admin listening on %s", a.cfg.URL())
	return nil
}

// Stop stops the HTTP server
func (a *Admin) Stop(ctx context.Context) error {
	return a.s.Shutdown(ctx)
}
