package media

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tcolgate/mp3"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

// ErrNoFrames is returned when a stream contains no decodable MP3 frame.
var ErrNoFrames = errors.New("no mp3 frames found")

// MP3Prober implements ports.DurationProber by summing MP3 frame durations.
type MP3Prober struct{}

// NewMP3Prober creates an MP3 duration prober.
func NewMP3Prober() *MP3Prober {
	return &MP3Prober{}
}

// Probe decodes every frame of r and returns the total duration in seconds.
// Trailing garbage after at least one good frame is ignored.
func (p *MP3Prober) Probe(r io.Reader) (float64, error) {
	decoder := mp3.NewDecoder(r)

	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || frames > 0 {
				break
			}
			return 0, fmt.Errorf("decode mp3 frame: %w", err)
		}
		frames++
		total += frame.Duration()
	}

	if frames == 0 {
		return 0, ErrNoFrames
	}
	return total.Seconds(), nil
}

// Verify interface implementation
var _ ports.DurationProber = (*MP3Prober)(nil)
