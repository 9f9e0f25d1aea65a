package playback

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// driftThreshold is the largest audio/video clock divergence, in
// seconds, tolerated before the audio track is hard-seeked. Smaller
// deltas free-run so frequent sampling never causes audible stutter.
const driftThreshold = 0.5

const autoplayPollInterval = time.Second

const autoplayBlockedMessage = "Please interact with the page to start playback."

// Engine slaves a hidden audio track to an embedded video surface. The
// surface is the master clock: every info sample repositions the audio
// when it drifts, and play/pause transitions on the surface start and
// stop the track. Once audio is rolling the surface is muted so it
// carries picture only.
type Engine struct {
	video  VideoSurface
	audio  AudioTrack
	clock  clockwork.Clock
	logger *slog.Logger

	mu          sync.Mutex
	shouldPlay  bool
	currentTime float64
	pollTimer   clockwork.Timer
	warning     bool

	onEnded           func()
	onAutoplayBlocked func(message string)
	onAutoplayCleared func()
}

func NewEngine(video VideoSurface, audio AudioTrack, clock clockwork.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		video:  video,
		audio:  audio,
		clock:  clock,
		logger: logger,
	}
}

// OnEnded registers a callback fired when the surface reports the end
// of the current item. Must be set before the engine receives events.
func (e *Engine) OnEnded(f func()) {
	e.onEnded = f
}

// OnAutoplayBlocked registers a callback fired once per blocked
// playback attempt; the warning stays up until OnAutoplayCleared.
func (e *Engine) OnAutoplayBlocked(f func(message string)) {
	e.onAutoplayBlocked = f
}

func (e *Engine) OnAutoplayCleared(f func()) {
	e.onAutoplayCleared = f
}

// HandleStateChange reacts to a coarse state transition reported by
// the video surface.
func (e *Engine) HandleStateChange(state PlayerState) {
	switch state {
	case StatePlaying:
		if err := e.audio.Play(); err != nil {
			// playback is retried by the poll until the user interacts
			e.logger.Debug("failed to start audio track", "error", err)
			return
		}
		e.video.Mute()
	case StatePaused:
		e.audio.Pause()
	case StateEnded:
		if e.onEnded != nil {
			e.onEnded()
		}
	}
}

// HandleInfo applies one periodic sample from the surface. Audio is
// hard-seeked only past the drift threshold; volume and mute state are
// mirrored unconditionally. The audio track is muted exactly when the
// surface is not, so one of the two is audible at a time.
func (e *Engine) HandleInfo(sample InfoSample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sample.CurrentTime != nil {
		t := *sample.CurrentTime
		if math.Abs(e.audio.Position()-t) > driftThreshold {
			e.audio.Seek(t)
		}
		e.currentTime = t
	}
	if sample.Volume != nil {
		e.audio.SetVolume(*sample.Volume / 100)
	}
	if sample.Muted != nil {
		e.audio.SetMuted(!*sample.Muted)
	}
}

// CurrentTime is the most recently sampled playback position.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTime
}

// SetShouldPlay reconciles the surface with the desired play state.
// When playing is requested the engine polls until the surface
// actually starts, surfacing a persistent warning while the runtime
// refuses programmatic playback; the warning is withdrawn as soon as
// playback begins or the desire flips to false.
func (e *Engine) SetShouldPlay(play bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.shouldPlay = play
	e.cancelPollLocked()

	if !play {
		e.video.Pause()
		e.clearWarningLocked()
		return
	}

	e.video.Play()
	e.schedulePollLocked()
}

func (e *Engine) schedulePollLocked() {
	e.pollTimer = e.clock.AfterFunc(autoplayPollInterval, e.poll)
}

func (e *Engine) poll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.shouldPlay {
		e.clearWarningLocked()
		return
	}
	if e.video.State() == StatePlaying {
		e.clearWarningLocked()
		return
	}

	if !e.warning {
		e.warning = true
		if e.onAutoplayBlocked != nil {
			e.onAutoplayBlocked(autoplayBlockedMessage)
		}
	}
	e.video.Play()
	e.schedulePollLocked()
}

func (e *Engine) cancelPollLocked() {
	if e.pollTimer != nil {
		e.pollTimer.Stop()
		e.pollTimer = nil
	}
}

func (e *Engine) clearWarningLocked() {
	if !e.warning {
		return
	}
	e.warning = false
	if e.onAutoplayCleared != nil {
		e.onAutoplayCleared()
	}
}

// Close stops the poll timer. The audio track is left as is; its
// owner decides when to release it.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPollLocked()
	e.clearWarningLocked()
}
