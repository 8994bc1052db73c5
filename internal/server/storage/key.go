package storage

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
)

const maxExtLen = 10

var extByMediaType = map[string]string{
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/heic":    ".heic",
	"image/heif":    ".heif",
	"image/avif":    ".avif",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/svg+xml": ".svg",
}

// NewKey builds the object key for a guest's photo:
//
//	<guestID>/<unix nanos>-<8 random hex chars><.ext>
//
// Two uploads by the same guest within the same nanosecond still differ in
// the random suffix.
func NewKey(guestID, filename, mediaType string, now time.Time) string {
	suffix := hex.EncodeToString(common.GenerateRandByteArray(4))
	return fmt.Sprintf("%s/%d-%s%s", guestID, now.UnixNano(), suffix, Extension(filename, mediaType))
}

// Extension returns the lower-cased extension of filename reduced to
// [a-z0-9], falling back to one derived from the media type. The result is
// empty or starts with a dot.
func Extension(filename, mediaType string) string {
	if ext := sanitizeExt(filepath.Ext(filename)); ext != "" {
		return "." + ext
	}

	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := extByMediaType[mt]; ok {
		return ext
	}
	if _, sub, ok := strings.Cut(mt, "/"); ok {
		if ext := sanitizeExt(sub); ext != "" {
			return "." + ext
		}
	}
	return ""
}

func sanitizeExt(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxExtLen {
				break
			}
		}
	}
	return b.String()
}
