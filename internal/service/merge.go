package service

import (
	"crypto/sha1"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

// podcastID derives the stable podcast id from its canonical feed URL.
func podcastID(canonical string) string {
	return sha1Hex(canonical)
}

// episodeID derives the stable episode id from the canonical feed URL and the item identity.
func episodeID(canonical, identity string) string {
	return sha1Hex(canonical + "\n" + identity)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// mergePodcast folds a freshly fetched podcast into the stored one.
//
// Descriptive fields come from fresh unless it left them empty; the
// stored image is kept when the fetch produced none. Episodes follow the
// fresh feed order, keeping local playback state for known ids, and stored
// episodes missing from the feed are retained after them.
func mergePodcast(stored, fresh domain.Podcast) domain.Podcast {
	merged := domain.Podcast{
		ID:          stored.ID,
		Title:       preferFresh(fresh.Title, stored.Title),
		Author:      preferFresh(fresh.Author, stored.Author),
		Description: preferFresh(fresh.Description, stored.Description),
		ImagePath:   preferFreshPtr(fresh.ImagePath, stored.ImagePath),
		FeedURL:     preferFresh(fresh.FeedURL, stored.FeedURL),
		LastUpdated: fresh.LastUpdated,
	}
	if merged.LastUpdated < stored.LastUpdated {
		merged.LastUpdated = stored.LastUpdated
	}

	known := make(map[string]domain.Episode, len(stored.Episodes))
	for _, ep := range stored.Episodes {
		known[ep.ID] = ep
	}

	inFresh := make(map[string]bool, len(fresh.Episodes))
	merged.Episodes = make([]domain.Episode, 0, len(fresh.Episodes)+len(stored.Episodes))
	for _, ep := range fresh.Episodes {
		if inFresh[ep.ID] {
			continue
		}
		inFresh[ep.ID] = true

		if old, ok := known[ep.ID]; ok {
			ep.PlayedSeconds = old.PlayedSeconds
			ep.IsPlayed = old.IsPlayed
			ep.FilePath = cloneStringPtr(old.FilePath)
			ep.ImagePath = preferFreshPtr(ep.ImagePath, old.ImagePath)
		}
		merged.Episodes = append(merged.Episodes, ep)
	}

	for _, old := range stored.Episodes {
		if !inFresh[old.ID] {
			merged.Episodes = append(merged.Episodes, cloneEpisode(old))
		}
	}
	return merged
}

func preferFresh(fresh, stored string) string {
	if strings.TrimSpace(fresh) != "" {
		return fresh
	}
	return stored
}

func preferFreshPtr(fresh, stored *string) *string {
	if fresh != nil && *fresh != "" {
		return cloneStringPtr(fresh)
	}
	return cloneStringPtr(stored)
}

// parseDuration reads an iTunes duration: plain seconds, MM:SS or HH:MM:SS.
// Anything else is 0.
func parseDuration(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0
	}

	total := 0.0
	for i, part := range parts {
		last := i == len(parts)-1
		var v float64
		var err error
		if last {
			v, err = strconv.ParseFloat(part, 64)
		} else {
			var n int64
			n, err = strconv.ParseInt(part, 10, 64)
			v = float64(n)
		}
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		if i > 0 && v >= 60 {
			return 0
		}
		total = total*60 + v
	}
	return total
}

func clonePodcast(p domain.Podcast) domain.Podcast {
	p.ImagePath = cloneStringPtr(p.ImagePath)
	episodes := make([]domain.Episode, len(p.Episodes))
	for i, ep := range p.Episodes {
		episodes[i] = cloneEpisode(ep)
	}
	p.Episodes = episodes
	return p
}

func clonePodcasts(podcasts []domain.Podcast) []domain.Podcast {
	out := make([]domain.Podcast, len(podcasts))
	for i, p := range podcasts {
		out[i] = clonePodcast(p)
	}
	return out
}

func cloneEpisode(ep domain.Episode) domain.Episode {
	ep.PubDate = cloneStringPtr(ep.PubDate)
	ep.ImagePath = cloneStringPtr(ep.ImagePath)
	ep.FilePath = cloneStringPtr(ep.FilePath)
	return ep
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
