package agent

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/webhookx-io/hookshot/constants"
	"github.com/webhookx-io/hookshot/model"
	"go.uber.org/zap"
)

var allowedAttrs = map[string]bool{
	"href":  true,
	"src":   true,
	"alt":   true,
	"title": true,
	"class": true,
	"id":    true,
}

type Agent struct {
	log *zap.SugaredLogger
	now func() time.Time
}

func New(log *zap.SugaredLogger) *Agent {
	return &Agent{log: log, now: time.Now}
}

// Capture turns a raw selection into content. An empty selection yields nil.
// When the HTML cannot be processed the plain text is still returned.
func (a *Agent) Capture(sel *Selection) *model.CapturedContent {
	text := strings.TrimSpace(sel.Text)
	if text == "" {
		return nil
	}

	content := &model.CapturedContent{
		Text:      text,
		Timestamp: a.now(),
		URL:       sel.URL,
		Title:     sel.Title,
	}

	html, images, err := extract(sel)
	if err == nil && sel.Fallback {
		err = errors.New("page failed to clone the selection")
	}
	if err != nil {
		a.log.Warnf("failed to extract selection markup, falling back to text: %v", err)
		content.HTML = text
		content.Images = []model.ImageRef{}
		return content
	}
	content.HTML = html
	content.Images = images
	return content
}

func extract(sel *Selection) (html string, images []model.ImageRef, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sel.HTML))
	if err != nil {
		return "", nil, err
	}
	body := doc.Find("body")

	sanitize(body)

	c := newCollector(sel.URL)
	body.Find("img").Each(func(_ int, img *goquery.Selection) {
		c.add(model.ImageRef{
			Src:    getAttr(img, "src"),
			Alt:    getAttr(img, "alt"),
			Title:  getAttr(img, "title"),
			Width:  intAttr(img, "width"),
			Height: intAttr(img, "height"),
		})
	})
	for _, img := range sel.Images {
		c.add(img)
	}

	html, err = body.Html()
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(html), c.images, nil
}

// sanitize drops executable elements and every attribute not allow-listed.
func sanitize(root *goquery.Selection) {
	root.Find("script, style, noscript").Remove()
	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		var drop []string
		for _, attr := range s.Nodes[0].Attr {
			if !allowedAttrs[strings.ToLower(attr.Key)] {
				drop = append(drop, attr.Key)
			}
		}
		for _, name := range drop {
			s.RemoveAttr(name)
		}
	})
}

type collector struct {
	page   *url.URL
	raw    string
	seen   map[string]bool
	images []model.ImageRef
}

func newCollector(pageURL string) *collector {
	page, _ := url.Parse(pageURL)
	return &collector{
		page:   page,
		raw:    pageURL,
		seen:   make(map[string]bool),
		images: []model.ImageRef{},
	}
}

func (c *collector) add(img model.ImageRef) {
	src := strings.TrimSpace(img.Src)
	if src == "" {
		return
	}
	if strings.HasPrefix(src, "data:") {
		if len(src) > constants.MaxDataURLLength {
			return
		}
	} else {
		src = c.resolve(src)
	}
	if src == "" || src == c.raw || c.seen[src] {
		return
	}
	c.seen[src] = true
	img.Src = src
	c.images = append(c.images, img)
}

func (c *collector) resolve(src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if c.page == nil || ref.IsAbs() {
		return ref.String()
	}
	return c.page.ResolveReference(ref).String()
}

func getAttr(sel *goquery.Selection, name string) string {
	val, _ := sel.Attr(name)
	return val
}

func intAttr(sel *goquery.Selection, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(getAttr(sel, name)))
	if err != nil {
		return 0
	}
	return n
}
