package gcs

import (
	"context"
)

// StorageService provides an interface for cloud storage operations used to
// stage dataset CSVs and publish feature tables.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// UploadFile uploads a local file to a storage bucket under the given object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// FetchFromGCS downloads file bytes from the given storage URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// DownloadToFile materializes a storage URI as a local file so CSV
	// loaders can stream it.
	DownloadToFile(ctx context.Context, gcsURI, destPath string) error

	// ExtractFilenameFromGCSURI extracts the filename from a storage URI.
	ExtractFilenameFromGCSURI(uri string) string
}
