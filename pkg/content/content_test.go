package content_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/content"
	"github.com/aretw0/tally/pkg/core"
)

var now = time.Date(2024, 2, 14, 15, 30, 0, 0, time.UTC)

func TestInsertImage(t *testing.T) {
	text, images := content.InsertImage("", nil, "a.jpg", now)
	assert.Equal(t, "[IMG:a.jpg]", text)
	require.Len(t, images, 1)
	assert.Equal(t, 0, images[0].Position)

	text, images = content.InsertImage("午饭", images, "b.jpg", now)
	assert.Equal(t, "午饭\n[IMG:b.jpg]", text)
	require.Len(t, images, 2)
	assert.Equal(t, "b.jpg", images[1].FileName)
	// Offsets count characters, not bytes.
	assert.Equal(t, 3, images[1].Position)
	assert.Equal(t, now, images[1].InsertTime)
}

func TestInsertImage_RepeatedFile(t *testing.T) {
	text, images := content.InsertImage("午饭", nil, "a.jpg", now)
	text, images = content.InsertImage(text+"\n饮料", images, "a.jpg", now)

	require.Len(t, images, 2)
	assert.Equal(t, 3, images[0].Position)
	assert.Equal(t, 18, images[1].Position)
	assert.Equal(t, "[IMG:a.jpg]", string([]rune(text)[images[1].Position:]))
}

func TestSegments(t *testing.T) {
	images := []core.ImageRef{{FileName: "a.jpg"}, {FileName: "b.jpg"}}
	text := "intro\n[IMG:a.jpg]\n  \n[IMG:gone.jpg]middle[IMG:b.jpg]"

	segs := content.Segments(text, images)
	require.Len(t, segs, 4)
	assert.Equal(t, content.TextSegment{Text: "intro"}, segs[0])
	assert.Equal(t, content.ImageSegment{Image: images[0]}, segs[1])
	assert.Equal(t, content.TextSegment{Text: "middle"}, segs[2])
	assert.Equal(t, content.ImageSegment{Image: images[1]}, segs[3])
}

func TestSegments_FallsBackToRawText(t *testing.T) {
	segs := content.Segments("   ", nil)
	require.Len(t, segs, 1)
	assert.Equal(t, content.TextSegment{Text: "   "}, segs[0])

	assert.Empty(t, content.Segments("", nil))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a\nb", content.PlainText("a [IMG:x.jpg] b"))
	assert.Equal(t, "", content.PlainText("[IMG:a.jpg]"))
	assert.Equal(t, "", content.PlainText("  \n[IMG:a.jpg]\n[IMG:b.jpg]"))
	assert.Equal(t, "plain", content.PlainText("  plain  "))
}

func TestNewImageName(t *testing.T) {
	name := content.NewImageName(now)
	assert.Regexp(t, regexp.MustCompile(`^IMG_20240214_153000_[0-9a-f]{8}\.jpg$`), name)
	assert.NotEqual(t, name, content.NewImageName(now))
}

func TestUsedAssets(t *testing.T) {
	used := content.UsedAssets([]core.Note{
		{Images: []core.ImageRef{{FileName: "a.jpg"}}},
		{Images: []core.ImageRef{{FileName: "b.jpg"}, {FileName: "a.jpg"}}},
		{},
	})
	assert.Len(t, used, 2)
	assert.Contains(t, used, "a.jpg")
	assert.Contains(t, used, "b.jpg")
}
