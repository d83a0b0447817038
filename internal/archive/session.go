package archive

import (
	"fmt"
	"sync"
)

// Session is one open container for one comic. The raw container bytes stay
// resident so pages can be extracted lazily without re-reading the upload.
type Session struct {
	name  string
	typ   Type
	data  []byte
	pages []PageDescriptor

	mu     sync.Mutex
	loaded map[int][]byte
}

// Name returns the container filename the session was opened with.
func (s *Session) Name() string { return s.name }

// Type returns the container family.
func (s *Session) Type() Type { return s.typ }

// Pages returns the descriptors in natural page order.
func (s *Session) Pages() []PageDescriptor {
	out := make([]PageDescriptor, len(s.pages))
	copy(out, s.pages)
	return out
}

// PageCount returns the number of image entries.
func (s *Session) PageCount() int { return len(s.pages) }

// Page returns the descriptor at index, if it exists.
func (s *Session) Page(index int) (PageDescriptor, bool) {
	if index < 0 || index >= len(s.pages) {
		return PageDescriptor{}, false
	}
	return s.pages[index], true
}

// LoadPage extracts the entry at index. Loading is idempotent: a page
// already extracted by this session is returned from memory. Failures wrap
// ErrExtraction and affect only the requested page.
func (s *Session) LoadPage(index int) (Page, error) {
	desc, ok := s.Page(index)
	if !ok {
		return Page{}, fmt.Errorf("%w: index %d out of range [0,%d)", ErrExtraction, index, len(s.pages))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.loaded[index]; ok {
		return Page{Data: data, MIME: MIMEForFilename(desc.Filename)}, nil
	}

	var (
		data []byte
		err  error
	)
	switch s.typ {
	case TypeZip:
		data, err = extractZipEntry(s.data, desc.EntryID)
	case TypeRAR:
		data, err = extractRAREntry(s.data, desc.EntryID)
	default:
		err = fmt.Errorf("container type %q", s.typ)
	}
	if err != nil {
		return Page{}, fmt.Errorf("%w: %s: %v", ErrExtraction, desc.EntryID, err)
	}
	if len(data) == 0 {
		return Page{}, fmt.Errorf("%w: %s: entry is empty", ErrExtraction, desc.EntryID)
	}

	s.loaded[index] = data
	return Page{Data: data, MIME: MIMEForFilename(desc.Filename)}, nil
}
