package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	cdppage "github.com/mafredri/cdp/protocol/page"
	"github.com/mafredri/cdp/protocol/runtime"
	"github.com/mafredri/cdp/rpcc"
	"github.com/pkg/errors"
	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/model"
	"go.uber.org/zap"
)

//go:embed agent.js
var agentScript string

const (
	pingExpression     = `window.__hookshot ? window.__hookshot.ping() : false`
	snapshotExpression = `window.__hookshot ? window.__hookshot.snapshot() : null`
)

var (
	ErrTabNotFound    = errors.New("tab not found")
	ErrAgentNotLoaded = errors.New("capture agent not loaded")
)

// CDPChannel talks to tabs through per-tab DevTools connections, dialed on
// first use and kept until the tab goes away or its top frame starts loading
// a new document.
type CDPChannel struct {
	devtools *devtool.DevTools
	agent    *agent.Agent
	log      *zap.SugaredLogger

	mux        sync.Mutex
	sessions   map[model.TabID]*session
	onNavigate func(model.TabID)
}

type session struct {
	conn   *rpcc.Conn
	client *cdp.Client
}

func NewCDPChannel(devtoolsURL string, agent *agent.Agent, log *zap.SugaredLogger) *CDPChannel {
	return &CDPChannel{
		devtools: devtool.New(devtoolsURL),
		agent:    agent,
		log:      log,
		sessions: make(map[model.TabID]*session),
	}
}

func (c *CDPChannel) Tab(ctx context.Context, id model.TabID) (*model.Tab, error) {
	target, err := c.target(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.Tab{ID: id, URL: target.URL, Title: target.Title}, nil
}

// Tabs lists the open pages.
func (c *CDPChannel) Tabs(ctx context.Context) ([]*model.Tab, error) {
	targets, err := c.devtools.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list targets")
	}
	tabs := make([]*model.Tab, 0, len(targets))
	for _, t := range targets {
		if t.Type != devtool.Page {
			continue
		}
		tabs = append(tabs, &model.Tab{ID: model.TabID(t.ID), URL: t.URL, Title: t.Title})
	}
	return tabs, nil
}

func (c *CDPChannel) target(ctx context.Context, id model.TabID) (*devtool.Target, error) {
	targets, err := c.devtools.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list targets")
	}
	for _, t := range targets {
		if t.Type == devtool.Page && model.TabID(t.ID) == id {
			return t, nil
		}
	}
	return nil, ErrTabNotFound
}

func (c *CDPChannel) Inject(ctx context.Context, id model.TabID) error {
	s, err := c.session(ctx, id)
	if err != nil {
		return err
	}
	if _, err := evaluate(ctx, s.client, agentScript); err != nil {
		c.drop(id, s)
		return errors.Wrap(err, "failed to inject capture agent")
	}
	return nil
}

func (c *CDPChannel) Send(ctx context.Context, id model.TabID, req *agent.Request) (*agent.Response, error) {
	s, err := c.session(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := c.agent.Handle(ctx, &page{client: s.client}, req)
	if err != nil && !errors.Is(err, ErrAgentNotLoaded) {
		c.drop(id, s)
	}
	return res, err
}

// OnNavigate registers fn to be called when the top frame of a connected tab
// starts loading, including reloads of the same URL. The connection to the
// tab is dropped before fn runs.
func (c *CDPChannel) OnNavigate(fn func(model.TabID)) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.onNavigate = fn
}

// Close drops the connection to tab.
func (c *CDPChannel) Close(id model.TabID) {
	c.mux.Lock()
	s, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mux.Unlock()
	if ok {
		_ = s.conn.Close()
	}
}

// Shutdown drops every connection.
func (c *CDPChannel) Shutdown() {
	c.mux.Lock()
	sessions := c.sessions
	c.sessions = make(map[model.TabID]*session)
	c.mux.Unlock()
	for _, s := range sessions {
		_ = s.conn.Close()
	}
}

func (c *CDPChannel) session(ctx context.Context, id model.TabID) (*session, error) {
	c.mux.Lock()
	s, ok := c.sessions[id]
	c.mux.Unlock()
	if ok {
		return s, nil
	}

	target, err := c.target(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := rpcc.DialContext(ctx, target.WebSocketDebuggerURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to tab %s", id)
	}
	s = &session{conn: conn, client: cdp.NewClient(conn)}

	loading, err := c.watch(ctx, id, s)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to watch tab %s", id)
	}

	c.mux.Lock()
	if existing, ok := c.sessions[id]; ok {
		c.mux.Unlock()
		_ = conn.Close()
		return existing, nil
	}
	c.sessions[id] = s
	c.mux.Unlock()

	c.log.Debugf("connected to tab %s", id)
	go c.follow(id, s, loading)
	return s, nil
}

// watch enables page events on s and returns the stream of frame loads
// together with the id of the tab's top frame.
func (c *CDPChannel) watch(ctx context.Context, id model.TabID, s *session) (*frameLoads, error) {
	stream, err := s.client.Page.FrameStartedLoading(context.Background())
	if err != nil {
		return nil, err
	}
	if err := s.client.Page.Enable(ctx); err != nil {
		_ = stream.Close()
		return nil, err
	}
	top := cdppage.FrameID(id)
	if tree, err := s.client.Page.GetFrameTree(ctx); err == nil && tree.FrameTree.Frame.ID != "" {
		top = tree.FrameTree.Frame.ID
	}
	return &frameLoads{stream: stream, top: top}, nil
}

type frameLoads struct {
	stream cdppage.FrameStartedLoadingClient
	top    cdppage.FrameID
}

// follow waits for the top frame of tab to start loading, then drops the
// session and reports the navigation. It returns when the connection closes.
func (c *CDPChannel) follow(id model.TabID, s *session, loads *frameLoads) {
	defer loads.stream.Close()
	for {
		ev, err := loads.stream.Recv()
		if err != nil {
			return
		}
		if ev.FrameID != loads.top {
			continue
		}
		c.log.Debugf("tab %s started loading", id)
		c.drop(id, s)

		c.mux.Lock()
		fn := c.onNavigate
		c.mux.Unlock()
		if fn != nil {
			fn(id)
		}
		return
	}
}

func (c *CDPChannel) drop(id model.TabID, s *session) {
	c.mux.Lock()
	if c.sessions[id] == s {
		delete(c.sessions, id)
	}
	c.mux.Unlock()
	_ = s.conn.Close()
}

// page is the agent side of a tab reached over a DevTools session.
type page struct {
	client *cdp.Client
}

func (p *page) Ping(ctx context.Context) error {
	v, err := evaluate(ctx, p.client, pingExpression)
	if err != nil {
		return err
	}
	var ok bool
	if err := json.Unmarshal(v, &ok); err != nil || !ok {
		return ErrAgentNotLoaded
	}
	return nil
}

func (p *page) Snapshot(ctx context.Context) (*agent.Selection, error) {
	v, err := evaluate(ctx, p.client, snapshotExpression)
	if err != nil {
		return nil, err
	}
	var sel *agent.Selection
	if err := json.Unmarshal(v, &sel); err != nil {
		return nil, errors.Wrap(err, "invalid selection snapshot")
	}
	if sel == nil {
		return nil, ErrAgentNotLoaded
	}
	return sel, nil
}

func evaluate(ctx context.Context, client *cdp.Client, expression string) (json.RawMessage, error) {
	args := runtime.NewEvaluateArgs(expression).SetReturnByValue(true).SetAwaitPromise(true)
	reply, err := client.Runtime.Evaluate(ctx, args)
	if err != nil {
		return nil, err
	}
	if reply.ExceptionDetails != nil {
		return nil, errors.Errorf("script exception: %s", reply.ExceptionDetails.Text)
	}
	if len(reply.Result.Value) == 0 {
		return json.RawMessage("null"), nil
	}
	return reply.Result.Value, nil
}
