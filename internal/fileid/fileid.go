// Package fileid provides a deterministic document ID from a document location.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path/filepath"
	"strings"
)

const prefix = "doc:"

// DocID returns a stable document ID for the given resolved location (absolute path or URL).
// Same location always yields the same ID; file paths are cleaned first so
// "/a/./b.xml" and "/a/b.xml" share an ID.
func DocID(location string) string {
	hash := sha256.Sum256([]byte(normalize(location)))
	return prefix + hex.EncodeToString(hash[:16])
}

func normalize(location string) string {
	if IsURL(location) {
		return location
	}
	return filepath.Clean(location)
}

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
