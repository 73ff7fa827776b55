package processing

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"mediaalbums/storage"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation reads the EXIF orientation tag, 1 (normal) when missing
func Orientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// ApplyOrientation transforms img so that it displays upright for the given
// EXIF orientation
func ApplyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// AutoRotate rewrites the stored image upright when its EXIF orientation
// asks for a transformation. The re-encoded file carries no EXIF data.
func AutoRotate(store storage.StorageAPI, path string) (rotated bool, err error) {
	var buf bytes.Buffer
	if _, err = store.Load(path, &buf); err != nil {
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	orientation := Orientation(bytes.NewReader(buf.Bytes()))
	if orientation < 2 {
		return false, nil
	}
	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.JPEG
	}
	var out bytes.Buffer
	if err = imaging.Encode(&out, ApplyOrientation(img, orientation), format, imaging.JPEGQuality(90)); err != nil {
		return false, fmt.Errorf("encoding %s: %w", path, err)
	}
	if _, err = store.Save(path, &out); err != nil {
		return false, fmt.Errorf("saving %s: %w", path, err)
	}
	return true, nil
}
