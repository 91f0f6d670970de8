// Package content handles the image markers embedded in note text.
//
// An image is shown inline by a marker "[IMG:<file name>]" in the content and
// a matching core.ImageRef in the note's image list.
package content

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aretw0/tally/pkg/core"
)

var markerPattern = regexp.MustCompile(`\[IMG:[^\]]+\]`)

// Marker returns the inline marker for fileName.
func Marker(fileName string) string {
	return "[IMG:" + fileName + "]"
}

// NewImageName returns a unique asset file name such as
// "IMG_20240214_153000_1a2b3c4d.jpg".
func NewImageName(now time.Time) string {
	return "IMG_" + now.Format("20060102_150405") + "_" + uuid.NewString()[:8] + ".jpg"
}

// InsertImage appends the marker for fileName on its own line and records a
// reference at the marker's character offset.
func InsertImage(text string, images []core.ImageRef, fileName string, now time.Time) (string, []core.ImageRef) {
	marker := Marker(fileName)
	if strings.TrimSpace(text) == "" {
		text = marker
	} else {
		text = text + "\n" + marker
	}

	pos := utf8.RuneCountInString(text) - utf8.RuneCountInString(marker)
	out := make([]core.ImageRef, 0, len(images)+1)
	out = append(out, images...)
	out = append(out, core.ImageRef{FileName: fileName, Position: pos, InsertTime: now})
	return text, out
}

// Segment is one piece of rendered content: a TextSegment or an ImageSegment.
type Segment interface {
	segment()
}

// TextSegment is a run of trimmed, non-empty text.
type TextSegment struct {
	Text string
}

// ImageSegment is an image whose marker was found in the content.
type ImageSegment struct {
	Image core.ImageRef
}

func (TextSegment) segment()  {}
func (ImageSegment) segment() {}

// Segments splits text around its image markers. Markers without a matching
// reference are dropped. If nothing remains, the raw text is returned as a
// single segment.
func Segments(text string, images []core.ImageRef) []Segment {
	byMarker := make(map[string]core.ImageRef, len(images))
	for _, img := range images {
		byMarker[Marker(img.FileName)] = img
	}

	var out []Segment
	addText := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, TextSegment{Text: s})
		}
	}

	last := 0
	for _, loc := range markerPattern.FindAllStringIndex(text, -1) {
		addText(text[last:loc[0]])
		if img, ok := byMarker[text[loc[0]:loc[1]]]; ok {
			out = append(out, ImageSegment{Image: img})
		}
		last = loc[1]
	}
	addText(text[last:])

	if len(out) == 0 && text != "" {
		out = append(out, TextSegment{Text: text})
	}
	return out
}

// PlainText is the content with every image marker removed. The text around
// the markers is trimmed and joined by newlines.
func PlainText(text string) string {
	var parts []string
	for _, s := range markerPattern.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// UsedAssets collects the asset names referenced by notes.
func UsedAssets(notes []core.Note) map[string]struct{} {
	used := make(map[string]struct{})
	for _, n := range notes {
		for _, img := range n.Images {
			used[img.FileName] = struct{}{}
		}
	}
	return used
}
