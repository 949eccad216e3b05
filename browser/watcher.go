package browser

import (
	"context"
	"sync"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	"github.com/mafredri/cdp/protocol/target"
	"github.com/mafredri/cdp/rpcc"
	"github.com/pkg/errors"
	"github.com/webhookx-io/hookshot/eventbus"
	"github.com/webhookx-io/hookshot/model"
	"go.uber.org/zap"
)

// Watcher follows the browser's targets and broadcasts tab closes and URL
// changes on the bus. Reloads of connected tabs are reported by
// CDPChannel.OnNavigate.
type Watcher struct {
	devtools *devtool.DevTools
	bus      eventbus.Bus
	log      *zap.SugaredLogger

	mux  sync.Mutex
	urls map[model.TabID]string
}

func NewWatcher(devtoolsURL string, bus eventbus.Bus, log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		devtools: devtool.New(devtoolsURL),
		bus:      bus,
		log:      log,
		urls:     make(map[model.TabID]string),
	}
}

// Run blocks until ctx is done or the browser connection fails.
func (w *Watcher) Run(ctx context.Context) error {
	version, err := w.devtools.Version(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query browser version")
	}
	conn, err := rpcc.DialContext(ctx, version.WebSocketDebuggerURL)
	if err != nil {
		return errors.Wrap(err, "failed to connect to browser")
	}
	defer conn.Close()
	client := cdp.NewClient(conn)

	destroyed, err := client.Target.TargetDestroyed(ctx)
	if err != nil {
		return err
	}
	defer destroyed.Close()
	changed, err := client.Target.TargetInfoChanged(ctx)
	if err != nil {
		return err
	}
	defer changed.Close()

	if err := client.Target.SetDiscoverTargets(ctx, target.NewSetDiscoverTargetsArgs(true)); err != nil {
		return errors.Wrap(err, "failed to discover targets")
	}
	w.log.Infof("watching browser %s", version.Browser)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-destroyed.Ready():
			ev, err := destroyed.Recv()
			if err != nil {
				return err
			}
			w.TabRemoved(model.TabID(ev.TargetID))
		case <-changed.Ready():
			ev, err := changed.Recv()
			if err != nil {
				return err
			}
			if ev.TargetInfo.Type != string(devtool.Page) {
				continue
			}
			w.TabChanged(model.TabID(ev.TargetInfo.TargetID), ev.TargetInfo.URL)
		}
	}
}

func (w *Watcher) TabRemoved(id model.TabID) {
	w.mux.Lock()
	delete(w.urls, id)
	w.mux.Unlock()
	w.bus.Broadcast(eventbus.EventTabRemoved, eventbus.TabData{TabID: id})
}

// TabChanged broadcasts a navigation unless the URL is the one last seen for
// the tab. Title-only changes are ignored.
func (w *Watcher) TabChanged(id model.TabID, url string) {
	w.mux.Lock()
	previous, known := w.urls[id]
	w.urls[id] = url
	w.mux.Unlock()

	if !known || previous != url {
		w.bus.Broadcast(eventbus.EventTabNavigated, eventbus.TabData{TabID: id, URL: url})
	}
}
