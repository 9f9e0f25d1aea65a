package tui

import (
	"sync"

	"github.com/JC-comp/karaoke/internal/client/playback"
)

// localSurface simulates an embedded video player in the terminal: a
// position that advances on ticks while playing, plus the play/pause/
// mute surface the sync engine drives. It stands in for a real video
// element, reporting info samples the same way one would.
type localSurface struct {
	mu       sync.Mutex
	state    playback.PlayerState
	position float64
	duration float64
	volume   float64
	muted    bool

	onStateChange func(state playback.PlayerState)
}

func newLocalSurface() *localSurface {
	return &localSurface{
		state:  playback.StateUnstarted,
		volume: 100,
	}
}

// Load resets the surface for a new item.
func (s *localSurface) Load(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = playback.StateUnstarted
	s.position = 0
	s.duration = duration
	s.muted = false
}

// SetDuration updates the item length without resetting the play
// head; scheduled items learn their duration only once job metadata
// arrives.
func (s *localSurface) SetDuration(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = duration
}

// Advance moves the play head by dt seconds and returns the sample a
// real surface would push. The second return is true when the item
// just ended.
func (s *localSurface) Advance(dt float64) (playback.InfoSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended := false
	if s.state == playback.StatePlaying {
		s.position += dt
		if s.duration > 0 && s.position >= s.duration {
			s.position = s.duration
			s.state = playback.StateEnded
			ended = true
		}
	}

	position := s.position
	volume := s.volume
	muted := s.muted
	return playback.InfoSample{
		CurrentTime: &position,
		Volume:      &volume,
		Muted:       &muted,
	}, ended
}

func (s *localSurface) Play() {
	s.mu.Lock()
	if s.state == playback.StatePlaying || s.state == playback.StateEnded {
		s.mu.Unlock()
		return
	}
	s.state = playback.StatePlaying
	f := s.onStateChange
	s.mu.Unlock()

	if f != nil {
		f(playback.StatePlaying)
	}
}

func (s *localSurface) Pause() {
	s.mu.Lock()
	if s.state != playback.StatePlaying {
		s.mu.Unlock()
		return
	}
	s.state = playback.StatePaused
	f := s.onStateChange
	s.mu.Unlock()

	if f != nil {
		f(playback.StatePaused)
	}
}

func (s *localSurface) Mute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = true
}

func (s *localSurface) Unmute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = false
}

func (s *localSurface) State() playback.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *localSurface) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// localAudio is the terminal stand-in for the hidden instrumental
// track: it tracks the state the engine pushes so the UI can display
// what a browser audio element would be doing.
type localAudio struct {
	mu       sync.Mutex
	playing  bool
	position float64
	volume   float64
	muted    bool
	source   string
}

func newLocalAudio() *localAudio {
	return &localAudio{volume: 1}
}

func (a *localAudio) SetSource(url string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if url != a.source {
		a.source = url
		a.position = 0
		a.playing = false
	}
}

func (a *localAudio) Source() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.source
}

func (a *localAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = true
	return nil
}

func (a *localAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
}

func (a *localAudio) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// Tick advances the audio clock independently of the video clock; the
// engine's drift correction keeps the two in step.
func (a *localAudio) Tick(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		a.position += dt
	}
}

func (a *localAudio) Position() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

func (a *localAudio) Seek(seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = seconds
}

func (a *localAudio) SetVolume(fraction float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = fraction
}

func (a *localAudio) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
}
