package playback

import (
	"github.com/JC-comp/karaoke/internal/domain"
)

// Placement is the pixel-space position of a cue inside its container.
// Offsets are measured from the named edge; nil means the axis is not
// pinned to that edge.
type Placement struct {
	FontSize float64
	Left     *float64
	Right    *float64
	Top      *float64
	Bottom   *float64
	CenterX  bool
}

// ComputePlacement converts a cue's normalized coordinates into pixel
// offsets for a container of the given size. All coordinates scale
// with the container width so captions keep their proportions across
// viewports; portrait containers reserve a quarter of the height below
// the captions so they clear the playback controls.
func ComputePlacement(cue domain.Cue, width, height float64) Placement {
	p := Placement{FontSize: cue.FontSize * width}

	switch cue.AlignX {
	case domain.AlignXCenter:
		p.CenterX = true
	case domain.AlignXLeft:
		left := cue.X * width
		p.Left = &left
	case domain.AlignXRight:
		right := (1 - cue.X) * width
		p.Right = &right
	}

	var marginBottom float64
	if height > width {
		marginBottom = height / 4
	}

	switch cue.AlignY {
	case domain.AlignYTop:
		top := cue.Y*width - marginBottom
		p.Top = &top
	case domain.AlignYBottom:
		bottom := cue.Y*width + marginBottom
		p.Bottom = &bottom
	case domain.AlignYCenter:
		top := (height-cue.Bottom*width)/2 + cue.Y*width - marginBottom
		p.Top = &top
	}

	return p
}
