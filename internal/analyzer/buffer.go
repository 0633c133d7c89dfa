package analyzer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var (
	// ErrEmptyImage is returned for images without pixels
	ErrEmptyImage = errors.New("image has no pixels")

	// ErrBufferSize is returned when Pix does not hold Width*Height*4 bytes
	ErrBufferSize = errors.New("pixel buffer size does not match dimensions")
)

// NewImageBuffer wraps an RGBA byte slice after checking its dimensions
func NewImageBuffer(width, height int, pix []byte) (ImageBuffer, error) {
	buf := ImageBuffer{Width: width, Height: height, Pix: pix}
	if err := buf.Validate(); err != nil {
		return ImageBuffer{}, err
	}
	return buf, nil
}

// Validate checks that the buffer is non-empty and consistently sized
func (b ImageBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 || len(b.Pix) == 0 {
		return ErrEmptyImage
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrBufferSize, b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// TotalPixels returns the pixel count implied by the byte length
func (b ImageBuffer) TotalPixels() int {
	return len(b.Pix) / 4
}

// BufferFromImage draws img into a tightly packed, non-premultiplied RGBA
// buffer, the same byte layout a browser canvas hands out.
func BufferFromImage(img image.Image) ImageBuffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return ImageBuffer{}
	}

	// Fast path: already packed NRGBA at the origin.
	if n, ok := img.(*image.NRGBA); ok && n.Stride == width*4 && bounds.Min == (image.Point{}) {
		return ImageBuffer{Width: width, Height: height, Pix: n.Pix[:width*height*4]}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return ImageBuffer{Width: width, Height: height, Pix: dst.Pix}
}
