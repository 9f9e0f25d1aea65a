package playback

import (
	"github.com/JC-comp/karaoke/internal/domain"
)

// cueLookAhead shifts activation half a second early so the reveal
// animation lands on the beat rather than after it.
const cueLookAhead = 0.5

// RenderedWord is a word with its reveal progress resolved for one
// point in time.
type RenderedWord struct {
	Text     string
	Progress float64
}

// RenderedCue is an active cue with per-word progress filled in.
type RenderedCue struct {
	Cue   domain.Cue
	Words []RenderedWord
}

// ActiveCues returns every cue whose [Start, End) window contains the
// advanced time, in input order. Overlapping cues all render; the
// result is a pure function of the sampled time, so jittery sampling
// only ever delays a highlight, never corrupts it.
func ActiveCues(cues []domain.Cue, currentTime float64) []RenderedCue {
	advanced := currentTime + cueLookAhead

	var active []RenderedCue
	for _, cue := range cues {
		if advanced < cue.Start || advanced >= cue.End {
			continue
		}

		words := make([]RenderedWord, 0, len(cue.Words))
		for _, word := range cue.Words {
			words = append(words, RenderedWord{
				Text:     word.Word,
				Progress: wordProgress(word, advanced),
			})
		}
		active = append(active, RenderedCue{Cue: cue, Words: words})
	}

	return active
}

// wordProgress is the highlighted fraction of a word at the advanced
// time, clamped to [0, 1]. Zero-duration words are static text: fully
// revealed once the clock reaches them.
func wordProgress(word domain.Word, advancedTime float64) float64 {
	if word.End <= word.Start {
		if advancedTime >= word.Start {
			return 1
		}
		return 0
	}

	progress := (advancedTime - word.Start) / (word.End - word.Start)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
