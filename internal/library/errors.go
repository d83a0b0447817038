package library

import (
	"errors"

	"longbox/internal/archive"
	"longbox/internal/store"
)

// ErrNotFound indicates the requested comic is not in the library.
var ErrNotFound = errors.New("comic not found")

// ErrUploadTooLarge indicates the upload exceeds the configured limit.
var ErrUploadTooLarge = errors.New("upload exceeds size limit")

// Kind classifies a service failure for presentation: HTTP status mapping,
// CLI messaging, and log severity all key off it.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindArchiveOpen       Kind = "archive_open_failure"
	KindEmptyArchive      Kind = "empty_archive"
	KindExtraction        Kind = "extraction_failure"
	KindUploadTooLarge    Kind = "upload_too_large"
	KindNotFound          Kind = "not_found"
	KindConsistency       Kind = "consistency_failure"
	KindInternal          Kind = "internal"
)

// KindOf maps an error returned by the service to its failure kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, archive.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, archive.ErrEmptyArchive):
		return KindEmptyArchive
	case errors.Is(err, archive.ErrOpenArchive):
		return KindArchiveOpen
	case errors.Is(err, archive.ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrUploadTooLarge):
		return KindUploadTooLarge
	case errors.Is(err, ErrNotFound), errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrConsistency):
		return KindConsistency
	default:
		return KindInternal
	}
}

// UserCorrectable reports whether the user can fix the failure by
// supplying a different or repaired file. Consistency and internal
// failures are defects, not user conditions.
func (k Kind) UserCorrectable() bool {
	switch k {
	case KindUnsupportedFormat, KindArchiveOpen, KindEmptyArchive, KindUploadTooLarge:
		return true
	default:
		return false
	}
}
