package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookshot/model"
	"go.uber.org/zap"
)

func newAgent() *Agent {
	a := New(zap.S())
	a.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return a
}

func TestCaptureEmptySelection(t *testing.T) {
	assert.Nil(t, newAgent().Capture(&Selection{Text: "  \n\t "}))
}

func TestCaptureSanitizes(t *testing.T) {
	content := newAgent().Capture(&Selection{
		Text:  "  Hello world  ",
		HTML:  `<p class="lead" style="color:red" onclick="steal()">Hello <a href="/docs" target="_blank" id="l">world</a></p><script>alert(1)</script><noscript>enable js</noscript><style>p{}</style>`,
		URL:   "https://example.com/blog/post",
		Title: "Post",
	})
	require.NotNil(t, content)
	assert.Equal(t, "Hello world", content.Text)
	assert.Equal(t, `<p class="lead">Hello <a href="/docs" id="l">world</a></p>`, content.HTML)
	assert.Equal(t, "https://example.com/blog/post", content.URL)
	assert.Equal(t, "Post", content.Title)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), content.Timestamp)
	assert.Empty(t, content.Images)
	assert.NotNil(t, content.Images)
}

func TestCaptureImages(t *testing.T) {
	large := "data:image/png;base64," + strings.Repeat("A", 100_000)
	small := "data:image/png;base64,AAAA"
	content := newAgent().Capture(&Selection{
		Text: "gallery",
		HTML: `<div>` +
			`<img src="img/a.png" alt="A" title="first" width="10" height="20">` +
			`<img src="https://cdn.example.com/b.png" alt="B">` +
			`<img src="img/a.png" alt="duplicate">` +
			`<img src="` + large + `">` +
			`<img src="` + small + `">` +
			`<img src="">` +
			`<img src="https://example.com/blog/post">` +
			`</div>`,
		Images: []model.ImageRef{
			{Src: "https://cdn.example.com/b.png", Alt: "direct duplicate"},
			{Src: "/c.png", Alt: "C"},
		},
		URL: "https://example.com/blog/post",
	})
	require.NotNil(t, content)
	assert.Equal(t, []model.ImageRef{
		{Src: "https://example.com/blog/img/a.png", Alt: "A", Title: "first", Width: 10, Height: 20},
		{Src: "https://cdn.example.com/b.png", Alt: "B"},
		{Src: small},
		{Src: "https://example.com/c.png", Alt: "C"},
	}, content.Images)
}

func TestHandle(t *testing.T) {
	a := newAgent()

	t.Run("ping", func(t *testing.T) {
		res, err := a.Handle(context.Background(), &fakePage{}, PingRequest)
		require.NoError(t, err)
		assert.True(t, res.Pong)
	})

	t.Run("unreachable", func(t *testing.T) {
		page := &fakePage{err: errors.New("no receiving end")}
		_, err := a.Handle(context.Background(), page, PingRequest)
		assert.Error(t, err)
		_, err = a.Handle(context.Background(), page, CaptureRequest)
		assert.Error(t, err)
	})

	t.Run("capture", func(t *testing.T) {
		page := &fakePage{sel: &Selection{Text: "hi", HTML: "<b>hi</b>", URL: "https://example.com"}}
		res, err := a.Handle(context.Background(), page, CaptureRequest)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "<b>hi</b>", res.Content.HTML)
	})

	t.Run("nothing selected", func(t *testing.T) {
		res, err := a.Handle(context.Background(), &fakePage{sel: &Selection{}}, CaptureRequest)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Nil(t, res.Content)
	})

	t.Run("page error", func(t *testing.T) {
		res, err := a.Handle(context.Background(), &fakePage{sel: &Selection{Error: "range detached"}}, CaptureRequest)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "range detached", res.Error)
	})

	t.Run("unknown action", func(t *testing.T) {
		res, err := a.Handle(context.Background(), &fakePage{}, &Request{Action: "reload"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, ErrUnrecognizedAction, res.Error)
	})
}

func TestResponseJSON(t *testing.T) {
	b, err := json.Marshal(&Response{Pong: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pong":true}`, string(b))

	b, err = json.Marshal(&Response{Success: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":null,"success":true}`, string(b))

	b, err = json.Marshal(&Response{Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"boom","success":false}`, string(b))

	var res Response
	require.NoError(t, json.Unmarshal([]byte(`{"content":{"text":"x"},"success":true}`), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "x", res.Content.Text)
}

type fakePage struct {
	sel *Selection
	err error
}

func (p *fakePage) Ping(ctx context.Context) error {
	return p.err
}

func (p *fakePage) Snapshot(ctx context.Context) (*Selection, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.sel, nil
}

func TestCaptureFallback(t *testing.T) {
	content := newAgent().Capture(&Selection{
		Text:     "plain text",
		HTML:     "",
		Fallback: true,
		Images:   []model.ImageRef{{Src: "https://example.com/a.png"}},
	})
	require.NotNil(t, content)
	assert.Equal(t, "plain text", content.HTML)
	assert.Empty(t, content.Images)
	assert.NotNil(t, content.Images)
}
