package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobScheme is the URL scheme for Azure Blob sources: azblob://container/path/to/blob
const BlobScheme = "azblob"

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage creates a blob source for the given storage account
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (ImageFetcher, error) {
	return NewAzureStorageWithEndpoint(fmt.Sprintf("https://%s.blob.core.windows.net", accountName), accountName, accountKey, maxBytes)
}

// NewAzureStorageWithEndpoint creates a blob source against a custom service
// URL such as an Azurite emulator.
func NewAzureStorageWithEndpoint(serviceURL, accountName, accountKey string, maxBytes int64) (ImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

// FetchImage downloads the blob named by an azblob:// URL
func (s *azureStorage) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	// Download blob to stream
	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSourceNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	if s.maxBytes > 0 && downloadResponse.ContentLength != nil && *downloadResponse.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: blob size %d", ErrBodyTooLarge, *downloadResponse.ContentLength)
	}

	return readLimited(retryReader, s.maxBytes)
}

// ParseBlobURL splits azblob://container/path/to/blob into container and blob name
func ParseBlobURL(blobURL string) (string, string, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	if parsedURL.Scheme != BlobScheme {
		return "", "", fmt.Errorf("invalid blob URL: scheme must be %s", BlobScheme)
	}

	containerName := parsedURL.Host
	blobName := strings.TrimPrefix(parsedURL.Path, "/")
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL: expected %s://container/blob", BlobScheme)
	}
	return containerName, blobName, nil
}
