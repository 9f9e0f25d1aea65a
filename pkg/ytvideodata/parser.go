package ytvideodata

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// watch pages title themselves "<video> - YouTube"
const titleSuffix = " - YouTube"

// getFromPage scrapes the public watch page. Fallback for videos the
// oembed endpoint refuses to describe.
func getFromPage(videoId string) (*VideoData, error) {
	resp, err := http.Get("https://youtu.be/" + videoId)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	return &VideoData{
		Title:        getTitle(doc),
		AuthorName:   getLinkContent(doc),
		ThumbnailUrl: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId),
	}, nil
}

func getTitle(doc *html.Node) string {
	n := findElement(doc, func(n *html.Node) bool {
		return n.Data == "title" && n.FirstChild != nil
	})
	if n == nil {
		return ""
	}
	return strings.TrimSuffix(n.FirstChild.Data, titleSuffix)
}

func getLinkContent(doc *html.Node) string {
	n := findElement(doc, func(n *html.Node) bool {
		return n.Data == "link" && attrValue(n, "itemprop") == "name"
	})
	if n == nil {
		return ""
	}
	return attrValue(n, "content")
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
