package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ZipLimits bounds how large an uploaded template may inflate to. All limits
// apply before any part is parsed.
type ZipLimits struct {
	MaxEntries     int
	MaxMemberBytes int64
	MaxTotalBytes  int64
	MaxRatio       float64
}

func DefaultZipLimits() ZipLimits {
	return ZipLimits{
		MaxEntries:     2000,
		MaxMemberBytes: 50 << 20,
		MaxTotalBytes:  200 << 20,
		MaxRatio:       120,
	}
}

// ErrUnsafeArchive marks templates rejected before parsing: zip bombs, path
// traversal, or archives that are not PowerPoint packages at all.
var ErrUnsafeArchive = errors.New("unsafe or invalid template archive")

// CheckArchive rejects archives that could exhaust memory or escape the
// package namespace. Declared sizes are trusted here; the reader enforces
// them again during extraction.
func CheckArchive(data []byte, lim ZipLimits) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: not a zip archive", ErrUnsafeArchive)
	}
	if lim.MaxEntries > 0 && len(zr.File) > lim.MaxEntries {
		return fmt.Errorf("%w: %d entries exceeds limit %d", ErrUnsafeArchive, len(zr.File), lim.MaxEntries)
	}

	var total uint64
	for _, f := range zr.File {
		name := f.Name
		if strings.HasPrefix(name, "/") || strings.Contains(name, "..") || strings.Contains(name, "\\") {
			return fmt.Errorf("%w: suspicious entry name %q", ErrUnsafeArchive, name)
		}
		size := f.UncompressedSize64
		if lim.MaxMemberBytes > 0 && size > uint64(lim.MaxMemberBytes) {
			return fmt.Errorf("%w: entry %q inflates to %d bytes", ErrUnsafeArchive, name, size)
		}
		total += size
	}
	if lim.MaxTotalBytes > 0 && total > uint64(lim.MaxTotalBytes) {
		return fmt.Errorf("%w: total uncompressed size %d exceeds limit", ErrUnsafeArchive, total)
	}
	if lim.MaxRatio > 0 && len(data) > 0 {
		ratio := float64(total) / float64(len(data))
		if ratio > lim.MaxRatio {
			return fmt.Errorf("%w: compression ratio %.0f exceeds limit %.0f", ErrUnsafeArchive, ratio, lim.MaxRatio)
		}
	}

	if !zipHasEntry(zr, contentTypesPart) || !zipHasEntry(zr, presentationPart) {
		return fmt.Errorf("%w: not a PowerPoint package", ErrUnsafeArchive)
	}
	return nil
}

func zipHasEntry(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}
