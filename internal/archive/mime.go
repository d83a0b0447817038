package archive

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps the allow-listed image extensions to their MIME types.
// MIME assignment is table-driven from the entry name; entry bytes are
// never sniffed.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// isImageEntry reports whether an archive entry name carries one of the
// allow-listed image extensions.
func isImageEntry(name string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MIMEForFilename returns the MIME type for an image filename, or an empty
// string when the extension is not allow-listed.
func MIMEForFilename(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}
