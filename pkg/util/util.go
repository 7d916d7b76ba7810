// Package util holds small path helpers shared by the CLI and the library.
package util

import (
	"path/filepath"
	"strings"
)

// HasExt reports whether path ends in ext, ignoring case. ext includes the
// leading dot.
func HasExt(path, ext string) bool {
	if ext == "" {
		return false
	}
	return strings.EqualFold(filepath.Ext(path), ext)
}

// IsOfficeLockFile reports whether name is a lock or owner file left next to a
// document by an office suite while it is open ("~$deck.pptx" for PowerPoint,
// ".~lock.deck.pptx#" for LibreOffice). Such files are never real inputs.
func IsOfficeLockFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~lock.")
}

// StemWithExt replaces the extension of path's base name with ext.
func StemWithExt(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
