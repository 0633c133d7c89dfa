package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileImageFetcher reads file:// references below a root directory
type FileImageFetcher struct {
	root     string
	maxBytes int64
}

// NewFileImageFetcher creates a fetcher serving photos below root
func NewFileImageFetcher(root string, maxBytes int64) (ImageFetcher, error) {
	if root == "" {
		return nil, errors.New("local image root is not configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid image root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("image root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image root %q is not a directory", root)
	}
	return &FileImageFetcher{root: abs, maxBytes: maxBytes}, nil
}

// FetchImage opens and decodes the referenced file
func (f *FileImageFetcher) FetchImage(ctx context.Context, ref string) (*Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := f.resolve(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, ref)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, ref)
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, info.Size())
	}

	return DecodeImage(file, f.maxBytes)
}

// resolve maps file:///a/b.jpg (or file://a/b.jpg) to <root>/a/b.jpg
func (f *FileImageFetcher) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid file reference: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme %q for file fetcher", u.Scheme)
	}

	rel := filepath.FromSlash(strings.TrimPrefix(u.Host+u.Path, "/"))
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrPathTraversal, ref)
		}
	}
	if rel == "" || rel == "." {
		return "", fmt.Errorf("%w: empty path", ErrImageNotFound)
	}

	full := filepath.Join(f.root, rel)
	if full != f.root && !strings.HasPrefix(full, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, ref)
	}
	return full, nil
}
