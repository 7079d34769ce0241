package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunelib/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunelib/internal/domain"
)

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession(nil, nil)
	assert.Empty(t, s.CurrentTrackID())

	require.NoError(t, s.Play("t1"))
	assert.Equal(t, "t1", s.CurrentTrackID())
	require.NoError(t, s.Play("t2"))
	assert.Equal(t, "t2", s.CurrentTrackID())

	require.NoError(t, s.Stop())
	assert.Empty(t, s.CurrentTrackID())

	assert.ErrorIs(t, s.Play(""), domain.ErrInvalidID)
	assert.Empty(t, s.CurrentTrackID())
}

func TestSession_StopPublishes(t *testing.T) {
	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()

	var stopped []string
	bus.Subscribe(domain.EventPlaybackStopped, func(e domain.Event) {
		stopped = append(stopped, e.(domain.PlaybackStoppedEvent).TrackID)
	})

	s := NewSession(bus, nil)
	require.NoError(t, s.Stop()) // idle, nothing published
	require.NoError(t, s.Play("t9"))
	require.NoError(t, s.Stop())

	assert.Equal(t, []string{"t9"}, stopped)
}
