package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

func listZipEntries(data []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if isHiddenEntry(file.Name) || !isImageEntry(file.Name) {
			continue
		}
		entries = append(entries, file.Name)
	}
	return entries, nil
}

func extractZipEntry(data []byte, entryID string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, file := range reader.File {
		if file.Name != entryID {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %q not found", entryID)
}

// isHiddenEntry filters macOS resource forks and dot files that archive
// tools scatter through comic containers. Entry paths from Windows-built
// archives can be backslash-separated, so both separators split segments.
func isHiddenEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(name, "__MACOSX\\") {
		return true
	}
	segments := strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, segment := range segments {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}
