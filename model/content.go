package model

import "time"

// ImageRef is an image found in a selection.
type ImageRef struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CapturedContent is produced per capture request and never persisted.
type CapturedContent struct {
	Text      string     `json:"text"`
	HTML      string     `json:"html"`
	Images    []ImageRef `json:"images"`
	Timestamp time.Time  `json:"timestamp"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
}

type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Payload is the body POSTed to a webhook.
type Payload struct {
	WebhookName string           `json:"webhook_name"`
	Timestamp   string           `json:"timestamp"`
	Content     *CapturedContent `json:"content"`
	PageInfo    PageInfo         `json:"page_info"`
}

const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func NewPayload(target WebhookTarget, content *CapturedContent, page PageInfo, now time.Time) *Payload {
	return &Payload{
		WebhookName: target.Name,
		Timestamp:   now.UTC().Format(TimestampLayout),
		Content:     content,
		PageInfo:    page,
	}
}
