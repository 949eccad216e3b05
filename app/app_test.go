package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/config"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/dispatcher"
	"github.com/webhookx-io/hookshot/eventbus"
	"github.com/webhookx-io/hookshot/menu"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/notification"
	"github.com/webhookx-io/hookshot/service"
	"github.com/webhookx-io/hookshot/worker"
)

type fakeChannel struct {
	mux        sync.Mutex
	content    *model.CapturedContent
	closed     []model.TabID
	onNavigate func(model.TabID)
}

func (c *fakeChannel) OnNavigate(fn func(model.TabID)) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.onNavigate = fn
}

func (c *fakeChannel) navigate(tab model.TabID) {
	c.mux.Lock()
	fn := c.onNavigate
	c.mux.Unlock()
	fn(tab)
}

func (c *fakeChannel) Send(_ context.Context, _ model.TabID, req *agent.Request) (*agent.Response, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if req.Action == agent.ActionPing {
		return &agent.Response{Pong: true}, nil
	}
	return &agent.Response{Content: c.content, Success: c.content != nil}, nil
}

func (c *fakeChannel) Tab(_ context.Context, tab model.TabID) (*model.Tab, error) {
	return &model.Tab{ID: tab, URL: "https://example.com"}, nil
}

func (c *fakeChannel) Inject(context.Context, model.TabID) error {
	return nil
}

func (c *fakeChannel) Close(tab model.TabID) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.closed = append(c.closed, tab)
}

func (c *fakeChannel) Closed() []model.TabID {
	c.mux.Lock()
	defer c.mux.Unlock()
	return append([]model.TabID(nil), c.closed...)
}

func TestApp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Application Suite")
}

var _ = Describe("application", Ordered, func() {
	var (
		app      *Application
		channel  *fakeChannel
		server   *httptest.Server
		payloads chan map[string]interface{}
		webhook  *model.WebhookTarget
	)

	BeforeAll(func() {
		payloads = make(chan map[string]interface{}, 10)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var payload map[string]interface{}
			_ = json.Unmarshal(body, &payload)
			payloads <- payload
			w.WriteHeader(200)
		}))

		cfg := config.New()
		cfg.Log.Level = modules.LogLevelError
		cfg.Storage.Driver = modules.StorageDriverMemory
		cfg.Admin.Listen = "off"
		cfg.Browser.Watch = false
		cfg.Browser.SettleDelay = 0
		cfg.Menu.SettleDelay = 0

		channel = &fakeChannel{
			content: &model.CapturedContent{Text: "hello", URL: "https://example.com/post", Title: "Post"},
		}
		var err error
		app, err = New(cfg,
			WithChannel(channel),
			WithWorkerOptions(worker.WithSleep(func(time.Duration) {})))
		Expect(err).To(BeNil())
		Expect(app.Start()).To(Succeed())
	})

	AfterAll(func() {
		Expect(app.Stop()).To(Succeed())
		server.Close()
	})

	It("rejects a second start", func() {
		Expect(app.Start()).To(MatchError(ErrApplicationStarted))
	})

	It("starts with an empty menu", func() {
		Expect(app.Menu().Items()).To(BeEmpty())
	})

	It("rebuilds the menu when a webhook is added", func() {
		var err error
		webhook, err = app.Service().Create(context.Background(), &service.CreateWebhook{Name: "Local", URL: server.URL})
		Expect(err).To(BeNil())

		Eventually(func() []menu.Item {
			return app.Menu().Items()
		}).Should(HaveLen(2))
		item, ok := app.Menu().Get(menu.ItemID(webhook.ID))
		Expect(ok).To(BeTrue())
		Expect(item.Title).To(Equal("Local"))
	})

	It("delivers the selection on click", func() {
		result, err := app.Dispatcher().Click(context.Background(), menu.ItemID(webhook.ID), "T1")
		Expect(err).To(BeNil())
		Expect(result.Outcome).To(Equal(dispatcher.Outcome(worker.OutcomeSuccess)))

		var payload map[string]interface{}
		Eventually(payloads).Should(Receive(&payload))
		Expect(payload["webhook_name"]).To(Equal("Local"))
		Expect(payload["content"].(map[string]interface{})["text"]).To(Equal("hello"))
		Expect(payload["page_info"]).To(Equal(map[string]interface{}{"url": "https://example.com/post", "title": "Post"}))

		notifications := app.Notifications().List()
		Expect(notifications).NotTo(BeEmpty())
		Expect(notifications[len(notifications)-1].Kind).To(Equal(notification.KindSuccess))
	})

	It("forgets a tab once it closes", func() {
		Expect(app.tabs.IsLive("T1")).To(BeTrue())
		app.bus.Broadcast(eventbus.EventTabRemoved, eventbus.TabData{TabID: "T1"})
		Eventually(func() bool { return app.tabs.IsLive("T1") }).Should(BeFalse())
		Eventually(channel.Closed).Should(ContainElement(model.TabID("T1")))
	})

	It("forgets a tab when it reloads the same page", func() {
		Expect(app.tabs.EnsureReady(context.Background(), "T2")).To(BeTrue())
		Expect(app.tabs.IsLive("T2")).To(BeTrue())

		channel.navigate("T2")
		Eventually(func() bool { return app.tabs.IsLive("T2") }).Should(BeFalse())
		Eventually(channel.Closed).Should(ContainElement(model.TabID("T2")))
	})

	It("removes the menu when the last webhook is deleted", func() {
		Expect(app.Service().Delete(context.Background(), webhook.ID)).To(Succeed())
		Eventually(func() []menu.Item {
			return app.Menu().Items()
		}).Should(BeEmpty())
	})
})
