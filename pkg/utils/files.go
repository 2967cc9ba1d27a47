package utils

import (
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	parentDir = filepath.Dir(fullPath)
	return fullPath, parentDir, nil
}

// ReplaceExt swaps the extension of path for ext, which includes the dot.
// A path without an extension gains one.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// DefaultOutputPath names the .hack file written next to an assembly source.
func DefaultOutputPath(source string) string {
	return ReplaceExt(source, ".hack")
}

// IsHackFile reports whether path names an already assembled program.
func IsHackFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hack")
}
