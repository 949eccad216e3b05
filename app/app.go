package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/webhookx-io/hookshot"
	"github.com/webhookx-io/hookshot/admin"
	"github.com/webhookx-io/hookshot/admin/api"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/browser"
	"github.com/webhookx-io/hookshot/config"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/constants"
	"github.com/webhookx-io/hookshot/dispatcher"
	"github.com/webhookx-io/hookshot/eventbus"
	"github.com/webhookx-io/hookshot/menu"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/notification"
	"github.com/webhookx-io/hookshot/pkg/kv"
	"github.com/webhookx-io/hookshot/pkg/log"
	"github.com/webhookx-io/hookshot/pkg/metrics"
	"github.com/webhookx-io/hookshot/pkg/safe"
	"github.com/webhookx-io/hookshot/pkg/schedule"
	"github.com/webhookx-io/hookshot/service"
	"github.com/webhookx-io/hookshot/store"
	"github.com/webhookx-io/hookshot/tabs"
	"github.com/webhookx-io/hookshot/worker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

// tabCloser is implemented by channels that hold per-tab connections.
type tabCloser interface {
	Close(tab model.TabID)
}

// navigationSource is implemented by channels that see tabs start loading.
type navigationSource interface {
	OnNavigate(fn func(model.TabID))
}

type Option func(*Application)

// WithChannel replaces the DevTools channel, used by tests and embedders.
func WithChannel(channel browser.Channel) Option {
	return func(app *Application) { app.channel = channel }
}

// WithKV replaces the storage backend selected by the configuration.
func WithKV(kv kv.KV) Option {
	return func(app *Application) { app.kv = kv }
}

// WithWorkerOptions passes options to the delivery worker.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(app *Application) { app.workerOpts = append(app.workerOpts, opts...) }
}

type Application struct {
	cfg *config.Config

	mux     sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	stop chan struct{}

	log        *zap.SugaredLogger
	kv         kv.KV
	bus        *eventbus.EventBus
	metrics    *metrics.Metrics
	scheduler  schedule.Scheduler
	channel    browser.Channel
	watcher    *browser.Watcher
	workerOpts []worker.Option

	store      *store.Store
	srv        *service.Service
	recorder   *notification.Recorder
	registry   *menu.Registry
	menu       *menu.Controller
	tabs       *tabs.Manager
	worker     *worker.Worker
	dispatcher *dispatcher.Dispatcher
	admin      *admin.Admin
}

func New(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg:  cfg,
		stop: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(app)
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

// NewKV opens the storage backend named by cfg.
func NewKV(cfg modules.StorageConfig, log *zap.SugaredLogger) (kv.KV, error) {
	switch cfg.Driver {
	case modules.StorageDriverMemory:
		return kv.NewMemory(), nil
	case modules.StorageDriverRedis:
		return kv.NewRedis(cfg.Redis.GetClient(), cfg.Redis.Prefix, constants.ChangeChannel, log.Named("redis")), nil
	default:
		interval := time.Duration(cfg.SQLite.PollInterval) * time.Millisecond
		return kv.NewSQLite(cfg.SQLite.DSN, interval, log.Named("sqlite"))
	}
}

func (app *Application) initialize() error {
	cfg := app.cfg

	log, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	app.log = log

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		app.log.Error(err)
	}))

	if app.kv == nil {
		app.kv, err = NewKV(cfg.Storage, log)
		if err != nil {
			return err
		}
	}

	app.metrics, err = metrics.New(cfg.Metrics)
	if err != nil {
		return err
	}
	app.scheduler = schedule.NewScheduler()
	if app.metrics.Enabled {
		app.scheduler.AddTask(&schedule.Task{
			Name:     "metrics.runtime",
			Interval: app.metrics.Interval,
			Do:       app.metrics.CollectRuntimeStats,
		})
	}

	app.bus = eventbus.NewEventBus(log.Named("eventbus"))
	app.store = store.New(app.kv, log.Named("store"))
	app.srv = service.NewService(app.store, log.Named("service"))

	messages := notification.NewFactory(&cfg.Notification)
	app.recorder = notification.NewRecorder(cfg.Notification.History)
	notifier := notification.Multi{
		notification.NewLogNotifier(log.Named("notification")),
		app.recorder,
	}

	app.registry = menu.NewRegistry()
	app.menu = menu.NewController(app.registry, &cfg.Menu, app.metrics, log.Named("menu"))

	if app.channel == nil {
		app.channel = browser.NewCDPChannel(cfg.Browser.DevToolsURL, agent.New(log.Named("agent")), log.Named("browser"))
	}
	if cfg.Browser.Watch && cfg.Browser.IsEnabled() {
		app.watcher = browser.NewWatcher(cfg.Browser.DevToolsURL, app.bus, log.Named("watcher"))
	}
	app.tabs, err = tabs.NewManager(app.channel, &cfg.Browser, log.Named("tabs"))
	if err != nil {
		return err
	}

	app.worker = worker.NewWorker(&cfg.Delivery, notifier, messages, app.metrics, log.Named("worker"), app.workerOpts...)
	app.dispatcher = dispatcher.NewDispatcher(app.store, app.tabs, app.channel, app.worker,
		notifier, messages, app.metrics, log.Named("dispatcher"))

	if cfg.Admin.IsEnabled() {
		api := api.NewAPI(api.Options{
			Config:        cfg,
			Service:       app.srv,
			Clicker:       app.dispatcher,
			Menus:         app.registry,
			Notifications: app.recorder,
		})
		app.admin = admin.NewAdmin(cfg.Admin, api.Handler(), log.Named("admin"))
	}

	app.registerEventHandler()

	return nil
}

func (app *Application) registerEventHandler() {
	app.kv.Watch(func(key string) {
		if key == constants.WebhooksKey {
			app.bus.Broadcast(eventbus.EventWebhooksChanged, eventbus.WebhooksChangedData{Key: key})
		}
	})
	app.bus.Subscribe(eventbus.EventWebhooksChanged, func(_ interface{}) {
		app.refresh(context.Background())
	})

	forget := func(v interface{}) {
		data := v.(eventbus.TabData)
		app.tabs.Forget(data.TabID)
		if c, ok := app.channel.(tabCloser); ok {
			c.Close(data.TabID)
		}
	}
	app.bus.Subscribe(eventbus.EventTabRemoved, forget)
	app.bus.Subscribe(eventbus.EventTabNavigated, forget)

	if source, ok := app.channel.(navigationSource); ok {
		source.OnNavigate(func(tab model.TabID) {
			app.bus.Broadcast(eventbus.EventTabNavigated, eventbus.TabData{TabID: tab})
		})
	}
}

// refresh reloads the webhook list and rebuilds the menu from it. A failure
// is logged and leaves the previous state in place.
func (app *Application) refresh(ctx context.Context) {
	webhooks, err := app.store.Load(ctx)
	if err != nil {
		app.log.Errorf("failed to load webhooks: %v", err)
		return
	}
	if err := app.menu.Rebuild(ctx, webhooks); err != nil {
		app.log.Errorf("failed to rebuild menu: %v", err)
	}
}

func (app *Application) Config() *config.Config {
	return app.cfg
}

func (app *Application) Service() *service.Service {
	return app.srv
}

func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

func (app *Application) Menu() *menu.Registry {
	return app.registry
}

func (app *Application) Notifications() *notification.Recorder {
	return app.recorder
}

// Init loads the persisted webhooks and builds the menu. It never fails:
// storage and menu errors leave the application running in a degraded state.
func (app *Application) Init(ctx context.Context) {
	app.refresh(ctx)
}

// Start starts application
func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	app.log.Infof("starting HookShot %s", hookshot.VERSION)

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.Init(ctx)

	if app.admin != nil {
		if err := app.admin.Start(); err != nil {
			cancel()
			return err
		}
	}
	if app.watcher != nil {
		app.wg.Add(1)
		safe.Go(func() {
			defer app.wg.Done()
			if err := app.watcher.Run(ctx); err != nil {
				app.log.Errorf("tab watcher stopped: %v", err)
			}
		})
	}
	app.scheduler.Start()

	app.started = true

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}

// Stop stops application
func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Info("exiting")

	defer func() {
		app.log.Info("exit")
		_ = app.log.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.admin != nil {
		_ = app.admin.Stop(ctx)
	}
	app.cancel()
	app.wg.Wait()
	app.scheduler.Stop()
	if cdp, ok := app.channel.(*browser.CDPChannel); ok {
		cdp.Shutdown()
	}
	app.bus.Wait()
	_ = app.metrics.Stop()
	_ = app.kv.Close()

	app.started = false
	app.stop <- struct{}{}

	return nil
}

// Close releases the resources of an application that was never started.
func (app *Application) Close() error {
	if cdp, ok := app.channel.(*browser.CDPChannel); ok {
		cdp.Shutdown()
	}
	return app.kv.Close()
}
