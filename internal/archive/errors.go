package archive

import "errors"

var (
	// ErrUnsupportedFormat indicates the filename extension is not a
	// recognized comic container. User-correctable.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrOpenArchive indicates the container could not be parsed at all
	// (corrupt data or an unsupported compression variant).
	ErrOpenArchive = errors.New("archive unreadable")

	// ErrEmptyArchive indicates the container parsed fine but holds no
	// image entries. Distinct from ErrOpenArchive: the fix is a different
	// file, not a repaired one.
	ErrEmptyArchive = errors.New("archive contains no images")

	// ErrExtraction indicates a single entry failed to decompress after
	// the container itself opened. Scoped to that page.
	ErrExtraction = errors.New("page extraction failed")
)
