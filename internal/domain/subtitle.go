package domain

// AlignX and AlignY name the anchor a cue's normalized coordinates are
// measured from.
type AlignX string

const (
	AlignXLeft   AlignX = "left"
	AlignXCenter AlignX = "center"
	AlignXRight  AlignX = "right"
)

type AlignY string

const (
	AlignYTop    AlignY = "top"
	AlignYCenter AlignY = "center"
	AlignYBottom AlignY = "bottom"
)

// Word is one karaoke-highlighted unit inside a cue. Start and End are
// seconds on the playback clock; a zero-length window means the word is
// static text with no progressive reveal.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Cue is a time-windowed subtitle line. The active window [Start, End)
// is evaluated against the advanced playback time. X, Y and FontSize
// are fractions of the container width; Bottom is the reserved space
// under a center-anchored cue.
type Cue struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	AlignX   AlignX  `json:"alignX"`
	AlignY   AlignY  `json:"alignY"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Bottom   float64 `json:"bottom"`
	FontSize float64 `json:"font_size"`
	Words    []Word  `json:"words"`
}
