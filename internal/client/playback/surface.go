package playback

// PlayerState mirrors the embedded surface's coarse playback state.
type PlayerState int

const (
	StateUnstarted PlayerState = iota
	StateBuffering
	StatePlaying
	StatePaused
	StateEnded
)

// VideoSurface is the capability set the engine needs from an embedded
// video player: it can be told to play, pause and mute, and it reports
// its coarse state on demand. The engine never owns the surface's
// clock; time arrives through InfoSample callbacks.
type VideoSurface interface {
	Play()
	Pause()
	Mute()
	Unmute()
	State() PlayerState
}

// AudioTrack is the hidden instrumental track slaved to the surface.
// Play returns an error when the runtime refuses programmatic
// playback.
type AudioTrack interface {
	Play() error
	Pause()
	Position() float64
	Seek(seconds float64)
	SetVolume(fraction float64)
	SetMuted(muted bool)
}

// InfoSample is one periodic report from the video surface. Fields are
// pointers because the surface reports them independently; nil means
// the field was absent from this sample.
type InfoSample struct {
	CurrentTime *float64 `json:"currentTime"`
	Volume      *float64 `json:"volume"`
	Muted       *bool    `json:"muted"`
}
