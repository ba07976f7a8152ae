package testutil

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
)

// CreateTestImage returns an opaque gradient where the pixel at (x, y) is
// R = x%256, G = y%256, B = (x+y)%256, so any sub-region can be recognised.
func CreateTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			px := row[x*4 : x*4+4]
			px[0] = uint8(x)
			px[1] = uint8(y)
			px[2] = uint8(x + y)
			px[3] = 0xff
		}
	}
	return img
}

// CreateTestPNG encodes CreateTestImage as PNG.
func CreateTestPNG(width, height int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, CreateTestImage(width, height))
	return buf.Bytes()
}

// CreateTestJPEG encodes CreateTestImage as JPEG.
func CreateTestJPEG(width, height int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, CreateTestImage(width, height), &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

// CreateTestBMP encodes CreateTestImage as BMP.
func CreateTestBMP(width, height int) []byte {
	var buf bytes.Buffer
	_ = bmp.Encode(&buf, CreateTestImage(width, height))
	return buf.Bytes()
}
