package ytvideodata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/net/html"
)

const watchPage = `<!DOCTYPE html>
<html>
<head>
<title>Never Gonna Give You Up - YouTube</title>
<link itemprop="name" content="Rick Astley">
</head>
<body></body>
</html>`

func TestParseWatchPage(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(watchPage))
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", getTitle(doc), "the watch page suffix is trimmed")
	assert.Equal(t, "Rick Astley", getLinkContent(doc))
}

func TestParseWatchPageWithoutMetadata(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<html><body><p>nope</p></body></html>"))
	require.NoError(t, err)

	assert.Empty(t, getTitle(doc))
	assert.Empty(t, getLinkContent(doc))
}
