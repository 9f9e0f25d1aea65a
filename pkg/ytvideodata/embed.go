package ytvideodata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

// getVideoWithEmbed asks the oembed endpoint first. It answers with
// 400 for unknown ids and 401 for videos whose owner disabled
// embedding; the latter still have a scrapeable watch page.
func getVideoWithEmbed(videoId string) (*VideoData, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoId
	resp, err := http.Get("https://www.youtube.com/oembed?url=" + url.QueryEscape(watchURL))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, ErrVideoNotFound
	case http.StatusUnauthorized:
		return nil, ErrVideoNotEmbeddable
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result VideoData
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
