package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Millis is a timestamp that travels as epoch milliseconds in JSON.
// Decoding also accepts an RFC 3339 string or a quoted number.
type Millis time.Time

// MarshalJSON implements json.Marshaler.
func (m Millis) MarshalJSON() ([]byte, error) {
	t := time.Time(m)
	if t.IsZero() {
		return []byte("0"), nil
	}
	return strconv.AppendInt(nil, t.UnixMilli(), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Millis{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*m = Millis(fromMillis(ms))
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*m = Millis(t)
		return nil
	}

	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		ms = int64(f)
	}
	*m = Millis(fromMillis(ms))
	return nil
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

type imageJSON struct {
	FileName   string `json:"fileName"`
	Position   int    `json:"position"`
	InsertTime Millis `json:"insertTime"`
	Caption    string `json:"caption"`
}

type noteJSON struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	CreationTime Millis      `json:"creationTime"`
	LastEditTime Millis      `json:"lastEditTime"`
	Tags         []string    `json:"tags"`
	Images       []imageJSON `json:"images"`
	HasImages    bool        `json:"hasImages"`
}

// MarshalJSON implements json.Marshaler.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageJSON{
		FileName:   r.FileName,
		Position:   r.Position,
		InsertTime: Millis(r.InsertTime),
		Caption:    r.Caption,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var raw imageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ImageRef{
		FileName:   raw.FileName,
		Position:   raw.Position,
		InsertTime: time.Time(raw.InsertTime),
		Caption:    raw.Caption,
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Nil lists are written as [].
func (n Note) MarshalJSON() ([]byte, error) {
	raw := noteJSON{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		CreationTime: Millis(n.CreationTime),
		LastEditTime: Millis(n.LastEditTime),
		Tags:         n.Tags,
		Images:       make([]imageJSON, 0, len(n.Images)),
		HasImages:    n.HasImages(),
	}
	if raw.Tags == nil {
		raw.Tags = []string{}
	}
	for _, img := range n.Images {
		raw.Images = append(raw.Images, imageJSON{
			FileName:   img.FileName,
			Position:   img.Position,
			InsertTime: Millis(img.InsertTime),
			Caption:    img.Caption,
		})
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler. Unknown fields are ignored and
// hasImages is recomputed from the image list.
func (n *Note) UnmarshalJSON(data []byte) error {
	var raw noteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Note{
		ID:           raw.ID,
		Title:        raw.Title,
		Content:      raw.Content,
		CreationTime: time.Time(raw.CreationTime),
		LastEditTime: time.Time(raw.LastEditTime),
		Tags:         raw.Tags,
	}
	for _, img := range raw.Images {
		n.Images = append(n.Images, ImageRef{
			FileName:   img.FileName,
			Position:   img.Position,
			InsertTime: time.Time(img.InsertTime),
			Caption:    img.Caption,
		})
	}
	return nil
}
