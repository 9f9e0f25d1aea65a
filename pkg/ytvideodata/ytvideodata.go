package ytvideodata

import (
	"errors"
	"fmt"
)

// VideoData holds the public metadata of a YouTube video, used to fill
// the title/artist of queued playlist items.
type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

func Get(videoId string) (*VideoData, error) {
	videoData, err := getVideoWithEmbed(videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = getFromPage(videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}
