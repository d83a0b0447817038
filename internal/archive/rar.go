package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/nwaples/rardecode"
)

// RAR streams are forward-only, so listing and extraction both walk the
// container from the start. Extraction cost is bounded by the Session page
// memoization: each entry decompresses at most once per open comic.

func listRAREntries(data []byte) ([]string, error) {
	reader, err := rardecode.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return nil, err
	}

	var entries []string
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.IsDir {
			continue
		}
		if isHiddenEntry(header.Name) || !isImageEntry(header.Name) {
			continue
		}
		entries = append(entries, header.Name)
	}
	return entries, nil
}

func extractRAREntry(data []byte, entryID string) ([]byte, error) {
	reader, err := rardecode.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.IsDir || header.Name != entryID {
			continue
		}
		return io.ReadAll(reader)
	}
	return nil, fmt.Errorf("entry %q not found", entryID)
}
