package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"go-plant-inspector/pkg/models"
)

var (
	// ErrImageNotFound is returned when the source has no photo at the reference
	ErrImageNotFound = errors.New("image not found")

	// ErrImageTooLarge is returned when a photo exceeds the configured byte limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrUnsupportedFormat is returned for content that is not JPEG, PNG or GIF
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrPathTraversal is returned for file references escaping the image root
	ErrPathTraversal = errors.New("path escapes image root")

	// ErrDecode is returned when content in a supported format is corrupt
	ErrDecode = errors.New("failed to decode image")
)

// supportedMIMETypes lists the formats with a registered decoder
var supportedMIMETypes = []string{"image/jpeg", "image/png", "image/gif"}

// sniffLen is how many leading bytes are inspected to detect the format
const sniffLen = 3072

// Photo is a decoded image together with what was learned while fetching it
type Photo struct {
	Image    image.Image
	Metadata models.ImageMetadata
}

// ImageFetcher acquires and decodes a photo from one kind of source
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (*Photo, error)
}

// DecodeImage sniffs, size-limits and decodes a photo from r.
// A maxBytes of zero or less disables the limit.
func DecodeImage(r io.Reader, maxBytes int64) (*Photo, error) {
	counter := &countingReader{r: r}
	var src io.Reader = counter
	if maxBytes > 0 {
		src = io.LimitReader(counter, maxBytes+1)
	}

	br := bufio.NewReaderSize(src, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(head) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnsupportedFormat)
	}

	mime := mimetype.Detect(head)
	if !isSupported(mime) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime.String())
	}

	img, format, err := image.Decode(br)
	if maxBytes > 0 && counter.n > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	return &Photo{
		Image: img,
		Metadata: models.ImageMetadata{
			ContentType:   mime.String(),
			ContentLength: counter.n,
			Width:         bounds.Dx(),
			Height:        bounds.Dy(),
			Format:        format,
		},
	}, nil
}

func isSupported(mime *mimetype.MIME) bool {
	for _, t := range supportedMIMETypes {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

// countingReader counts bytes read from r
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
