package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"
     xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Deep Dive</title>
    <link>https://example.com</link>
    <atom:link href="https://example.com/canonical.xml" rel="self" type="application/rss+xml"/>
    <description>Long form conversations</description>
    <itunes:author>Jo Host</itunes:author>
    <itunes:image href="https://example.com/show.jpg"/>
    <item>
      <title>Episode 2</title>
      <guid>ep-2</guid>
      <pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>Second</p>]]></description>
      <enclosure url="https://cdn.example.com/cover.jpg" type="image/jpeg" length="10"/>
      <enclosure url="https://cdn.example.com/ep2.mp3" type="audio/mpeg" length="1000"/>
      <itunes:duration>1:02:03</itunes:duration>
      <itunes:image href="https://example.com/ep2.jpg"/>
    </item>
    <item>
      <title>Episode 1</title>
      <link>https://example.com/ep1</link>
      <enclosure url="https://cdn.example.com/ep1.mp3" type="audio/mpeg" length="1000"/>
      <itunes:duration>754</itunes:duration>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Show</title>
  <id>urn:uuid:feed</id>
  <updated>2024-03-01T12:00:00Z</updated>
  <author><name>Atom Author</name></author>
  <link rel="self" href="https://atom.example.com/feed"/>
  <entry>
    <title>Entry</title>
    <id>urn:uuid:entry-1</id>
    <updated>2024-03-01T12:00:00Z</updated>
    <link rel="enclosure" type="audio/mpeg" href="https://atom.example.com/e1.mp3"/>
    <content type="html">&lt;b&gt;Body&lt;/b&gt;</content>
  </entry>
</feed>`

func TestParse_RSSWithITunes(t *testing.T) {
	f, err := NewParser().Parse([]byte(rssDoc))
	require.NoError(t, err)

	assert.Equal(t, "Deep Dive", f.Title)
	assert.Equal(t, "Jo Host", f.Author)
	assert.Equal(t, "Long form conversations", f.Description)
	assert.Equal(t, "https://example.com/show.jpg", f.ImageURL)
	assert.Equal(t, "https://example.com/canonical.xml", f.FeedURL)
	require.Len(t, f.Items, 2)

	ep2 := f.Items[0]
	assert.Equal(t, "ep-2", ep2.GUID)
	assert.Equal(t, "Episode 2", ep2.Title)
	assert.Equal(t, "https://cdn.example.com/ep2.mp3", ep2.AudioURL, "audio enclosure preferred")
	assert.Equal(t, "1:02:03", ep2.Duration)
	assert.Equal(t, "https://example.com/ep2.jpg", ep2.ImageURL)
	assert.Contains(t, ep2.DescriptionHTML, "<p>Second</p>")
	require.NotNil(t, ep2.PubDate)
	assert.True(t, ep2.PubDate.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))

	ep1 := f.Items[1]
	assert.Equal(t, "https://example.com/ep1", ep1.Identity())
	assert.Equal(t, "754", ep1.Duration)
	assert.Nil(t, ep1.PubDate)
}

func TestParse_Atom(t *testing.T) {
	f, err := NewParser().Parse([]byte(atomDoc))
	require.NoError(t, err)

	assert.Equal(t, "Atom Show", f.Title)
	assert.Equal(t, "Atom Author", f.Author)
	assert.Equal(t, "https://atom.example.com/feed", f.FeedURL)
	require.Len(t, f.Items, 1)
	assert.Equal(t, "urn:uuid:entry-1", f.Items[0].Identity())
	assert.Equal(t, "urn:uuid:entry-1", f.Items[0].ID)
	assert.Empty(t, f.Items[0].GUID)
	assert.Equal(t, "https://atom.example.com/e1.mp3", f.Items[0].AudioURL)
	assert.Contains(t, f.Items[0].DescriptionHTML, "<b>Body</b>")
	assert.NotNil(t, f.Items[0].PubDate)
}

const jsonDoc = `{
  "version": "https://jsonfeed.org/version/1.1",
  "title": "JSON Show",
  "feed_url": "https://json.example.com/feed.json",
  "items": [
    {
      "id": "item-7",
      "title": "Seven",
      "url": "https://json.example.com/7",
      "content_html": "<p>Seven</p>",
      "attachments": [{"url": "https://json.example.com/7.mp3", "mime_type": "audio/mpeg"}]
    }
  ]
}`

func TestParse_JSONFeedItemID(t *testing.T) {
	f, err := NewParser().Parse([]byte(jsonDoc))
	require.NoError(t, err)

	require.Len(t, f.Items, 1)
	item := f.Items[0]
	assert.Equal(t, "item-7", item.ID)
	assert.Empty(t, item.GUID)
	assert.Equal(t, "item-7", item.Identity())
	assert.Equal(t, "https://json.example.com/7.mp3", item.AudioURL)
}

func TestParse_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":    "",
		"blank":    "   \n",
		"not xml":  "this is plain text",
		"html":     "<html><body>nope</body></html>",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(doc))
			assert.ErrorIs(t, err, domain.ErrFeedParse)
		})
	}
}
