package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// blobDownloader is the part of *azblob.Client the fetcher uses
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureBlobFetcher reads azblob://<container>/<blob> references
type AzureBlobFetcher struct {
	client   blobDownloader
	maxBytes int64
}

// NewAzureBlobFetcher authenticates with a shared key against the account
func NewAzureBlobFetcher(accountName, accountKey string, maxBytes int64) (ImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return &AzureBlobFetcher{client: client, maxBytes: maxBytes}, nil
}

// FetchImage downloads and decodes the referenced blob
func (s *AzureBlobFetcher) FetchImage(ctx context.Context, ref string) (*Photo, error) {
	containerName, blobName, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, ref)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if s.maxBytes > 0 && resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrImageTooLarge, *resp.ContentLength)
	}

	photo, err := DecodeImage(resp.Body, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if resp.ContentType != nil && *resp.ContentType != "" {
		photo.Metadata.ContentType = *resp.ContentType
	}
	return photo, nil
}

// ParseBlobRef splits azblob://container/path/to/blob.jpg
func ParseBlobRef(ref string) (containerName, blobName string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob reference: %w", err)
	}
	if u.Scheme != "azblob" {
		return "", "", fmt.Errorf("unsupported scheme %q for azure fetcher", u.Scheme)
	}
	containerName = u.Host
	blobName = strings.TrimPrefix(u.Path, "/")
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("blob reference %q needs a container and a blob name", ref)
	}
	return containerName, blobName, nil
}
