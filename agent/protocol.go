// Package agent implements the capture agent protocol and the extraction of
// selected content.
package agent

import (
	"context"
	"encoding/json"

	"github.com/webhookx-io/hookshot/model"
)

type Action string

const (
	ActionPing               Action = "ping"
	ActionGetSelectedContent Action = "getSelectedContent"
)

const ErrUnrecognizedAction = "unrecognized action"

type Request struct {
	Action Action `json:"action"`
}

var (
	PingRequest    = &Request{Action: ActionPing}
	CaptureRequest = &Request{Action: ActionGetSelectedContent}
)

// Response is one of {pong}, {content, success} or {error, success:false}.
type Response struct {
	Pong    bool
	Content *model.CapturedContent
	Success bool
	Error   string
}

func (r *Response) MarshalJSON() ([]byte, error) {
	switch {
	case r.Pong:
		return json.Marshal(struct {
			Pong bool `json:"pong"`
		}{true})
	case r.Error != "":
		return json.Marshal(struct {
			Error   string `json:"error"`
			Success bool   `json:"success"`
		}{r.Error, false})
	default:
		return json.Marshal(struct {
			Content *model.CapturedContent `json:"content"`
			Success bool                   `json:"success"`
		}{r.Content, r.Success})
	}
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var v struct {
		Pong    bool                   `json:"pong"`
		Content *model.CapturedContent `json:"content"`
		Success bool                   `json:"success"`
		Error   string                 `json:"error"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Response{Pong: v.Pong, Content: v.Content, Success: v.Success, Error: v.Error}
	return nil
}

// Selection is the raw snapshot the page-side script takes of the current
// selection.
type Selection struct {
	Text   string           `json:"text"`
	HTML   string           `json:"html"`
	Images []model.ImageRef `json:"images"`
	URL    string           `json:"url"`
	Title  string           `json:"title"`
	Error  string           `json:"error"`
	// Fallback is set when the page could not clone the selected markup.
	Fallback bool `json:"fallback"`
}

// Page is the page side of a loaded capture agent.
type Page interface {
	Ping(ctx context.Context) error
	Snapshot(ctx context.Context) (*Selection, error)
}

// Handle answers req against page. An error means the page could not be
// reached at all.
func (a *Agent) Handle(ctx context.Context, page Page, req *Request) (*Response, error) {
	switch req.Action {
	case ActionPing:
		if err := page.Ping(ctx); err != nil {
			return nil, err
		}
		return &Response{Pong: true}, nil
	case ActionGetSelectedContent:
		sel, err := page.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		if sel.Error != "" {
			return &Response{Error: sel.Error}, nil
		}
		return &Response{Content: a.Capture(sel), Success: true}, nil
	default:
		return &Response{Error: ErrUnrecognizedAction}, nil
	}
}
