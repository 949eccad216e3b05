package model

import (
	"net/url"
	"slices"
	"strings"
)

// TabID identifies a browser page target.
type TabID string

type Tab struct {
	ID    TabID  `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (t Tab) PageInfo() PageInfo {
	return PageInfo{URL: t.URL, Title: t.Title}
}

// IsPrivileged reports whether the tab shows an internal page that cannot
// host the capture agent.
func (t Tab) IsPrivileged(schemes []string) bool {
	u, err := url.Parse(t.URL)
	if err != nil || u.Scheme == "" {
		return false
	}
	return slices.Contains(schemes, strings.ToLower(u.Scheme))
}
