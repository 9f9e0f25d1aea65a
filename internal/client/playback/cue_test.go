package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JC-comp/karaoke/internal/domain"
)

func TestCueActivationWindow(t *testing.T) {
	cues := []domain.Cue{{
		Start: 10,
		End:   15,
		Words: []domain.Word{{Word: "la", Start: 10, End: 12}},
	}}

	tests := []struct {
		currentTime float64
		active      bool
	}{
		{9.4, false},
		{9.5, true},
		{10.0, true},
		{14.4, true},
		{14.5, false},
		{20.0, false},
	}

	for _, tt := range tests {
		active := ActiveCues(cues, tt.currentTime)
		if tt.active {
			assert.Len(t, active, 1, "cue must be active at %v", tt.currentTime)
		} else {
			assert.Empty(t, active, "cue must be inactive at %v", tt.currentTime)
		}
	}
}

func TestWordHighlightProgress(t *testing.T) {
	cues := []domain.Cue{{
		Start: 9,
		End:   15,
		Words: []domain.Word{{Word: "la", Start: 10, End: 12}},
	}}

	tests := []struct {
		currentTime float64
		progress    float64
	}{
		{9.4, 0.0},
		{10.5, 0.5},
		{12.5, 1.0},
		{14.0, 1.0},
	}

	for _, tt := range tests {
		active := ActiveCues(cues, tt.currentTime)
		require.Len(t, active, 1)
		require.Len(t, active[0].Words, 1)
		assert.InDelta(t, tt.progress, active[0].Words[0].Progress, 1e-9, "progress at %v", tt.currentTime)
	}
}

func TestZeroDurationWordIsStaticText(t *testing.T) {
	word := domain.Word{Word: "Generating lyrics...", Start: 0, End: 0}

	assert.Equal(t, 1.0, wordProgress(word, 0.5), "static text is fully shown once reached")

	late := domain.Word{Word: "x", Start: 3, End: 3}
	assert.Equal(t, 0.0, wordProgress(late, 2.0))
	assert.Equal(t, 1.0, wordProgress(late, 3.0))
}

func TestOverlappingCuesAllRender(t *testing.T) {
	cues := []domain.Cue{
		{Start: 10, End: 20, Words: []domain.Word{{Word: "verse"}}},
		{Start: 14, End: 16, Words: []domain.Word{{Word: "echo"}}},
		{Start: 30, End: 40, Words: []domain.Word{{Word: "later"}}},
	}

	active := ActiveCues(cues, 14.0)
	require.Len(t, active, 2)
	assert.Equal(t, "verse", active[0].Words[0].Text)
	assert.Equal(t, "echo", active[1].Words[0].Text)
}
