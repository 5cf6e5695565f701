package storage

import (
	"context"
	"time"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
)

var _ catalogapp.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage stands in when storage is disabled in
// configuration. The URLs it hands out point nowhere; the image flow
// stays exercisable in local setups without MinIO.
type StubObjectStorage struct {
	baseURL string
}

func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{baseURL: "https://storage.invalid"}
}

func (s *StubObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	return s.baseURL + "/upload/" + storageKey, time.Now().Add(expiresIn), nil
}

func (s *StubObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	return s.baseURL + "/download/" + storageKey, time.Now().Add(expiresIn), nil
}

// DeleteObject is a no-op.
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	return nil
}

// ObjectExists always reports true so image confirmation succeeds
// without a real backend.
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	return true, nil
}
