package gallery

import (
	"fmt"
	"path"
	"strings"
)

type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Kinds lists every media kind in sequencer priority order
var Kinds = []Kind{KindPhoto, KindVideo, KindAudio}

func ParseKind(s string) (Kind, bool) {
	for _, kind := range Kinds {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

// Item is a single photo, video or audio clip as seen by the sequencer,
// the cover rule and the presentation layer.
type Item interface {
	ItemKind() Kind
	ItemID() uint64
	ItemName() string
	ItemOrdering() int
	// CoverImage is the photo image, video poster or audio cover art path.
	// Empty when the item has nothing to show as an album cover.
	CoverImage() string
	AlbumCover() bool
}

// SameItem compares by (kind, id)
func SameItem(a, b Item) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ItemKind() == b.ItemKind() && a.ItemID() == b.ItemID()
}

func ItemURL(item Item) string {
	return fmt.Sprintf("/%s/%d/", item.ItemKind(), item.ItemID())
}

// CoverImage returns the image path shown for an album whose cover is item
func CoverImage(item Item) string {
	if item == nil {
		return ""
	}
	return item.CoverImage()
}

// Extension is the lower-cased text after the last dot of the file name,
// or the whole lower-cased name when there is no dot.
func Extension(filename string) string {
	base := path.Base(filename)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return strings.ToLower(base[i+1:])
	}
	return strings.ToLower(base)
}

var mimeTypes = map[Kind]map[string]string{
	KindAudio: {
		"m4a": "audio/mp4",
		"mp3": "audio/mpeg",
		"ogg": "audio/ogg",
	},
	KindVideo: {
		"mp4":  "video/mp4",
		"ogv":  "video/ogg",
		"webm": "video/webm",
	},
}

// MimeType is used for the type attribute of <source> tags
func MimeType(kind Kind, filename string) string {
	return mimeTypes[kind][Extension(filename)]
}
