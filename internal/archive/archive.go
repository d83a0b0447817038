package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"longbox/internal/natsort"
)

// Type identifies a container family. Diagnostics only; Open dispatches on
// it internally.
type Type string

const (
	TypeZip     Type = "zip"
	TypeRAR     Type = "rar"
	TypeUnknown Type = "unknown"
)

var containerTypes = map[string]Type{
	".cbz": TypeZip,
	".zip": TypeZip,
	".cbr": TypeRAR,
	".rar": TypeRAR,
}

// IsSupported reports whether the filename extension is an allow-listed
// comic container. The check is syntactic: a mismatched extension fails
// later at Open rather than being silently re-detected.
func IsSupported(name string) bool {
	return DetectType(name) != TypeUnknown
}

// DetectType classifies a filename by extension.
func DetectType(name string) Type {
	if typ, ok := containerTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return typ
	}
	return TypeUnknown
}

// PageDescriptor references one image entry inside an open container. It
// carries the entry path, not bytes, and stays valid for the lifetime of
// its Session.
type PageDescriptor struct {
	Filename string `json:"filename"`
	Index    int    `json:"index"`
	EntryID  string `json:"entryId"`
}

// Page is one extracted image.
type Page struct {
	Data []byte
	MIME string
}

// Open parses a container held in memory and lists its image entries in
// natural filename order. It returns ErrUnsupportedFormat for an unknown
// extension, an error wrapping ErrOpenArchive when the container cannot be
// parsed, and ErrEmptyArchive when it parses but holds no images.
func Open(name string, data []byte) (*Session, error) {
	typ := DetectType(name)
	if typ == TypeUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}

	var (
		entries []string
		err     error
	)
	switch typ {
	case TypeZip:
		entries, err = listZipEntries(data)
	case TypeRAR:
		entries, err = listRAREntries(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenArchive, name, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyArchive, name)
	}

	natsort.Sort(entries)

	pages := make([]PageDescriptor, len(entries))
	for i, entry := range entries {
		pages[i] = PageDescriptor{
			Filename: filepath.Base(entry),
			Index:    i,
			EntryID:  entry,
		}
	}

	return &Session{
		name:   name,
		typ:    typ,
		data:   data,
		pages:  pages,
		loaded: make(map[int][]byte),
	}, nil
}
