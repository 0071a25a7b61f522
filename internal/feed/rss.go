package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"rewatch/internal/services"
)

// Item is one raw feed item.
type Item struct {
	Title       string
	PubDate     string
	Description string
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// Parse decodes an RSS 2.0 document into items in feed order.
func Parse(r io.Reader) ([]Item, error) {
	var doc rssDocument
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrParse, "feed", "decode", "invalid rss document", err)
	}
	items := make([]Item, 0, len(doc.Channel.Items))
	for _, raw := range doc.Channel.Items {
		items = append(items, Item{
			Title:       strings.TrimSpace(raw.Title),
			PubDate:     strings.TrimSpace(raw.PubDate),
			Description: strings.TrimSpace(raw.Description),
		})
	}
	return items, nil
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
}

// ParsePubDate parses the feed's publish date. It accepts RFC 1123 with a
// numeric or named zone, RFC 3339, and a bare calendar date prefix.
func ParsePubDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, services.Wrap(services.ErrParse, "feed", "pub date", "empty date", nil)
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if len(value) >= len("2006-01-02") {
		if t, err := time.Parse("2006-01-02", value[:len("2006-01-02")]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, services.Wrap(services.ErrParse, "feed", "pub date", fmt.Sprintf("unrecognised date %q", value), nil)
}
