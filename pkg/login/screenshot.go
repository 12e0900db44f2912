package login

import (
	"path/filepath"
	"strings"
)

// Screenshot file prefixes.
const (
	ResultPrefix = "result"
	ErrorPrefix  = "error"
)

// ScreenshotStem derives a file-name stem from an instance URL: the scheme
// and trailing slashes are removed, then "." and "/" become "_".
func ScreenshotStem(instanceURL string) string {
	stem := instanceURL
	if i := strings.Index(stem, "://"); i >= 0 {
		stem = stem[i+len("://"):]
	}
	stem = strings.TrimRight(stem, "/")
	return strings.NewReplacer(".", "_", "/", "_").Replace(stem)
}

// ScreenshotPath returns <dir>/<prefix>_<stem>.png.
func ScreenshotPath(dir, prefix, instanceURL string) string {
	name := prefix + "_" + ScreenshotStem(instanceURL) + ".png"
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
