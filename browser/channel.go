// Package browser reaches the pages of a Chromium browser over the DevTools
// protocol.
package browser

import (
	"context"

	"github.com/webhookx-io/hookshot/agent"
	"github.com/webhookx-io/hookshot/model"
)

//go:generate mockgen -source=channel.go -destination=mock/channel.go -package=mock

// Channel is the request/response link to the capture agent of a tab.
type Channel interface {
	// Send delivers req to the agent in tab. An error means the agent did not
	// answer.
	Send(ctx context.Context, tab model.TabID, req *agent.Request) (*agent.Response, error)
	// Tab returns the current navigation target of tab, or ErrTabNotFound.
	Tab(ctx context.Context, tab model.TabID) (*model.Tab, error)
	// Inject loads the capture agent into tab.
	Inject(ctx context.Context, tab model.TabID) error
}
