package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/google/uuid"

	"realtyBack/internal/models"
)

// ProgressFunc receives per-file transfer counts while a batch is in flight.
// Observability only; batch results never depend on it.
type ProgressFunc func(fileName string, transferred, total int64)

// FileUploader uploads a single object and returns its download URL.
type FileUploader interface {
	UploadFile(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (string, error)
}

// UploadAll uploads every file concurrently and returns one URL per file in
// input order, regardless of completion order; the first image is the cover
// image by contract with downstream consumers. If any single upload fails the
// whole batch fails and no URL list is returned. Already-uploaded blobs from a
// failed batch are left behind; there is no compensating delete.
func UploadAll(ctx context.Context, up FileUploader, files []*multipart.FileHeader, ownerID string, progress ProgressFunc) ([]string, error) {
	urls := make([]string, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, fh := range files {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			urls[i], errs[i] = uploadOne(ctx, up, fh, ownerID, progress)
		}(i, fh)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
		}
	}
	return urls, nil
}

func uploadOne(ctx context.Context, up FileUploader, fh *multipart.FileHeader, ownerID string, progress ProgressFunc) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %v", fh.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %v", fh.Filename, err)
	}

	var body io.ReadSeeker = bytes.NewReader(data)
	if progress != nil {
		name := fh.Filename
		body = &progressReader{
			rs:    body,
			total: int64(len(data)),
			onChange: func(transferred, total int64) {
				progress(name, transferred, total)
			},
		}
	}

	// Random suffix keeps repeated uploads of identically named files from
	// colliding.
	key := fmt.Sprintf("%s-%s-%s", ownerID, fh.Filename, uuid.New().String())
	return up.UploadFile(ctx, key, body, int64(len(data)), fh.Header.Get("Content-Type"))
}

// UploadAll on the concrete uploader so the orchestrator can hold a single
// dependency for the whole batch stage.
func (u *S3Uploader) UploadAll(ctx context.Context, files []*multipart.FileHeader, ownerID string, progress ProgressFunc) ([]string, error) {
	return UploadAll(ctx, u, files, ownerID, progress)
}
