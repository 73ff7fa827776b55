package utils

import (
	"bytes"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sha512String hashes and encodes in hex the result
func Sha512String(s string) string {
	hash := sha512.New()
	hash.Write([]byte(s))
	return hex.EncodeToString(hash.Sum(nil))
}

func RandSalt(saltSize int) string {
	b := make([]byte, saltSize)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// SanitizeName restricts the characters of an uploaded file name
func SanitizeName(in string) string {
	in = path.Base(strings.ReplaceAll(in, "\\", "/"))
	var name strings.Builder
	for i, c := range in {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			(c == '.' && i > 0) || (c == '-') || (c == '_') {

			name.WriteRune(c)
		} else {
			// Replace all other characters with '_' (underscore)
			name.WriteString("_")
		}
	}
	return name.String()
}

// ThumbPath returns the path of the generated thumbnail for a stored image.
// Thumbs are always JPEG.
func ThumbPath(p string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + "_thumb.jpg"
}

type ImageThumbConverted struct {
	ThumbSize int64
	NewX      uint16
	NewY      uint16
	OldX      uint16
	OldY      uint16
}

func CreateThumb(size uint, reader io.Reader, writer io.Writer) (result ImageThumbConverted, err error) {
	image, _, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, image, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	imageRect = image.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}

// IsImage checks that the content decodes as one of the registered image formats
func IsImage(reader io.Reader) bool {
	_, _, err := image.DecodeConfig(reader)
	return err == nil
}
