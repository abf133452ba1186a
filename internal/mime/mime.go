// Package mime maps file names to the Content-Type sent with them.
package mime

import "strings"

// Unknown is returned for names without an extension or with an unmapped
// one. Browsers offer to save rather than render it.
const Unknown = "x-application/x-unknown"

// types is keyed by lowercased extension and never written after init.
var types = map[string]string{
	"txt":   "text/plain",
	"html":  "text/html",
	"htm":   "text/html",
	"css":   "text/css",
	"js":    "text/javascript",
	"java":  "text/x-java",
	"jpeg":  "image/jpeg",
	"jpg":   "image/jpeg",
	"png":   "image/png",
	"gif":   "image/gif",
	"ico":   "image/x-icon",
	"class": "application/java-vm",
	"jar":   "application/java-archive",
	"zip":   "application/zip",
	"xml":   "application/xml",
	"xhtml": "application/xhtml+xml",
}

// Resolve returns the content type for name, looking only at the text after
// the final '.'.
func Resolve(name string) string {
	pos := strings.LastIndexByte(name, '.')
	if pos < 0 {
		return Unknown
	}

	if t, ok := types[strings.ToLower(name[pos+1:])]; ok {
		return t
	}
	return Unknown
}
