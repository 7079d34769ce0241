package ports

import (
	"context"

	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// Fetcher retrieves remote resources over HTTP/HTTPS.
//
// Implementations follow redirects and apply a bounded timeout. Every failure
// (timeout, non-200, connection error) is reported as an error matching
// domain.ErrNoData so callers can treat it as absence.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser turns a syndication document into a domain.Feed.
type FeedParser interface {
	// Parse returns the parsed feed, or an error wrapping domain.ErrFeedParse.
	Parse(data []byte) (*domain.Feed, error)
}
