package ocr

import (
	"bytes"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

const maxImageWidth = 1800

// NormalizeImage prepares an uploaded image for recognition: apply the EXIF
// orientation, downscale to maxImageWidth without enlargement, and re-encode
// as PNG. Undecodable input maps to ErrImageDecode.
func NormalizeImage(buf []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrImageDecode
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.PNG); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
