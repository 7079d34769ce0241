package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/repository/jsonfile"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

const dataDir = "/data"

var errNoTags = errors.New("no tags")

// fakeTags serves canned tag bundles per path.
type fakeTags map[string]*domain.TagBundle

func (f fakeTags) ReadTags(_ context.Context, path string) (*domain.TagBundle, error) {
	if b, ok := f[path]; ok {
		return b, nil
	}
	return nil, errNoTags
}

type fakeProber struct {
	seconds float64
	err     error
}

func (f fakeProber) Probe(r io.Reader) (float64, error) {
	if _, err := io.ReadAll(r); err != nil {
		return 0, err
	}
	return f.seconds, f.err
}

// fakeCovers resolves covers from a fixed table and counts calls per path.
type fakeCovers struct {
	mu      sync.Mutex
	refs    map[string]string
	calls   map[string]int
	missing map[string]bool
}

func newFakeCovers(refs map[string]string) *fakeCovers {
	if refs == nil {
		refs = map[string]string{}
	}
	return &fakeCovers{refs: refs, calls: map[string]int{}, missing: map[string]bool{}}
}

func (f *fakeCovers) Cached(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[ref]
}

// evict marks a cached reference as no longer present on disk.
func (f *fakeCovers) evict(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[ref] = true
}

func (f *fakeCovers) Resolve(_ context.Context, path string) (*string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	if ref, ok := f.refs[path]; ok {
		return &ref, true
	}
	return nil, false
}

func (f *fakeCovers) set(path, ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[path] = ref
}

func (f *fakeCovers) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// fakeFetcher serves canned bodies per URL.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	fails  map[string]bool
	calls  map[string]int
	hook   func(url string)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: map[string][]byte{}, fails: map[string]bool{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	body, ok := f.bodies[url]
	fail := f.fails[url]
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	if fail || !ok {
		return nil, domain.NewFetchError(url, 0, errors.New("timeout"))
	}
	return body, nil
}

func (f *fakeFetcher) serve(url string, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = []byte(body)
	delete(f.fails, url)
}

func (f *fakeFetcher) fail(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails[url] = true
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// fakeArtwork turns image bytes into a deterministic reference.
type fakeArtwork struct{}

func (fakeArtwork) CacheBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrNoCover
	}
	return "file:///cache/podcasts/" + string(data) + ".png", nil
}

// countingPodcastRepo counts snapshot saves.
type countingPodcastRepo struct {
	*jsonfile.PodcastRepository
	mu    sync.Mutex
	saves int
}

func (r *countingPodcastRepo) SaveAll(p []domain.Podcast) error {
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	return r.PodcastRepository.SaveAll(p)
}

func (r *countingPodcastRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func newCountingPodcastRepo(fs afero.Fs) *countingPodcastRepo {
	return &countingPodcastRepo{PodcastRepository: jsonfile.NewPodcastRepository(fs, dataDir, nil)}
}

type rssItem struct {
	guid, link, title, audio, duration, image, pubDate string
}

// rss renders a minimal podcast RSS document.
func rss(self, title, image string, items ...rssItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd" xmlns:atom="http://www.w3.org/2005/Atom"><channel>`)
	fmt.Fprintf(&b, "<title>%s</title>", title)
	if self != "" {
		fmt.Fprintf(&b, `<atom:link href="%s" rel="self" type="application/rss+xml"/>`, self)
	}
	if image != "" {
		fmt.Fprintf(&b, `<itunes:image href="%s"/>`, image)
	}
	for _, it := range items {
		b.WriteString("<item>")
		if it.title != "" {
			fmt.Fprintf(&b, "<title>%s</title>", it.title)
		}
		if it.guid != "" {
			fmt.Fprintf(&b, "<guid>%s</guid>", it.guid)
		}
		if it.link != "" {
			fmt.Fprintf(&b, "<link>%s</link>", it.link)
		}
		if it.audio != "" {
			fmt.Fprintf(&b, `<enclosure url="%s" type="audio/mpeg" length="1"/>`, it.audio)
		}
		if it.duration != "" {
			fmt.Fprintf(&b, "<itunes:duration>%s</itunes:duration>", it.duration)
		}
		if it.image != "" {
			fmt.Fprintf(&b, `<itunes:image href="%s"/>`, it.image)
		}
		if it.pubDate != "" {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.pubDate)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}
