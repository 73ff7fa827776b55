package processing

import (
	"errors"
	"io"

	"github.com/bogem/id3v2"
)

var ErrNoCoverArt = errors.New("no embedded cover art")

var pictureExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ExtractCoverArt returns the attached picture of an ID3v2 tag, preferring
// the front cover, together with a file extension for it
func ExtractCoverArt(r io.Reader) (picture []byte, extension string, err error) {
	tag, err := id3v2.ParseReader(r, id3v2.Options{Parse: true, ParseFrames: []string{"Attached picture"}})
	if err != nil {
		return nil, "", err
	}

	var chosen *id3v2.PictureFrame
	for _, frame := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok || len(pic.Picture) == 0 {
			continue
		}
		if chosen == nil || (pic.PictureType == id3v2.PTFrontCover && chosen.PictureType != id3v2.PTFrontCover) {
			chosen = &pic
		}
	}
	if chosen == nil {
		return nil, "", ErrNoCoverArt
	}
	extension, ok := pictureExtensions[chosen.MimeType]
	if !ok {
		extension = "jpg"
	}
	return chosen.Picture, extension, nil
}
