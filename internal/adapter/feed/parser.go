// Package feed adapts github.com/mmcdole/gofeed to ports.FeedParser.
// RSS 2.0, Atom and JSON Feed documents are accepted; iTunes podcast
// extensions supply author, artwork and duration when present.
package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// Parser implements ports.FeedParser.
// A fresh gofeed.Parser is used per document so Parse is safe for concurrent use.
type Parser struct{}

// NewParser creates a feed parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts a feed document into a domain.Feed.
func (p *Parser) Parse(data []byte) (*domain.Feed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrFeedParse)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedParse, err)
	}

	out := &domain.Feed{
		Title:       strings.TrimSpace(parsed.Title),
		Author:      feedAuthor(parsed),
		Description: strings.TrimSpace(parsed.Description),
		ImageURL:    feedImage(parsed),
		FeedURL:     strings.TrimSpace(parsed.FeedLink),
		Items:       make([]domain.FeedItem, 0, len(parsed.Items)),
	}
	if out.Description == "" && parsed.ITunesExt != nil {
		out.Description = strings.TrimSpace(parsed.ITunesExt.Summary)
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		out.Items = append(out.Items, convertItem(parsed.FeedType, item))
	}
	return out, nil
}

// convertItem maps a gofeed item. gofeed reports an Atom entry id or a
// JSON Feed item id in its GUID field; those go to FeedItem.ID, leaving
// FeedItem.GUID for RSS <guid>.
func convertItem(feedType string, item *gofeed.Item) domain.FeedItem {
	fi := domain.FeedItem{
		Link:            strings.TrimSpace(item.Link),
		Title:           strings.TrimSpace(item.Title),
		AudioURL:        enclosureURL(item),
		DescriptionHTML: item.Content,
	}
	if strings.TrimSpace(fi.DescriptionHTML) == "" {
		fi.DescriptionHTML = item.Description
	}

	switch feedType {
	case "atom", "json":
		fi.ID = strings.TrimSpace(item.GUID)
	default:
		fi.GUID = strings.TrimSpace(item.GUID)
	}

	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		fi.PubDate = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		fi.PubDate = &t
	}

	if item.Image != nil {
		fi.ImageURL = strings.TrimSpace(item.Image.URL)
	}
	if itunes := item.ITunesExt; itunes != nil {
		fi.Duration = strings.TrimSpace(itunes.Duration)
		if fi.ImageURL == "" {
			fi.ImageURL = strings.TrimSpace(itunes.Image)
		}
		if strings.TrimSpace(fi.DescriptionHTML) == "" {
			fi.DescriptionHTML = itunes.Summary
		}
	}
	return fi
}

// enclosureURL prefers an audio enclosure, falling back to the first one.
func enclosureURL(item *gofeed.Item) string {
	first := ""
	for _, enc := range item.Enclosures {
		if enc == nil || strings.TrimSpace(enc.URL) == "" {
			continue
		}
		if first == "" {
			first = strings.TrimSpace(enc.URL)
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return strings.TrimSpace(enc.URL)
		}
	}
	return first
}

func feedAuthor(f *gofeed.Feed) string {
	if f.ITunesExt != nil {
		if a := strings.TrimSpace(f.ITunesExt.Author); a != "" {
			return a
		}
	}
	for _, p := range f.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	return ""
}

func feedImage(f *gofeed.Feed) string {
	if f.Image != nil && strings.TrimSpace(f.Image.URL) != "" {
		return strings.TrimSpace(f.Image.URL)
	}
	if f.ITunesExt != nil {
		return strings.TrimSpace(f.ITunesExt.Image)
	}
	return ""
}

// Verify interface implementation
var _ ports.FeedParser = (*Parser)(nil)
