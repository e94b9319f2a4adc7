package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func zipWith(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCheckArchiveAcceptsTemplate(t *testing.T) {
	data := buildTemplate(t, templateOptions{})
	if err := CheckArchive(data, DefaultZipLimits()); err != nil {
		t.Fatalf("CheckArchive() = %v", err)
	}
}

func TestCheckArchiveRejectsHighRatio(t *testing.T) {
	// 4MB of zeros compresses to a few KB, far past the default ratio cap.
	data := zipWith(t, map[string][]byte{
		"[Content_Types].xml":  []byte("<Types/>"),
		"ppt/presentation.xml": []byte("<p/>"),
		"bomb.bin":             make([]byte, 4<<20),
	})
	err := CheckArchive(data, DefaultZipLimits())
	if !errors.Is(err, ErrUnsafeArchive) {
		t.Fatalf("CheckArchive() = %v, want ErrUnsafeArchive", err)
	}
}

func TestCheckArchiveRejectsOversizedMember(t *testing.T) {
	lim := DefaultZipLimits()
	lim.MaxMemberBytes = 10
	lim.MaxRatio = 0
	data := zipWith(t, map[string][]byte{
		"[Content_Types].xml":  []byte("<Types/>"),
		"ppt/presentation.xml": []byte("<p/>"),
		"big.bin":              bytes.Repeat([]byte("x"), 100),
	})
	if err := CheckArchive(data, lim); !errors.Is(err, ErrUnsafeArchive) {
		t.Fatalf("CheckArchive() = %v, want ErrUnsafeArchive", err)
	}
}

func TestCheckArchiveRejectsTooManyEntries(t *testing.T) {
	lim := DefaultZipLimits()
	lim.MaxEntries = 2
	data := zipWith(t, map[string][]byte{
		"[Content_Types].xml":  []byte("<Types/>"),
		"ppt/presentation.xml": []byte("<p/>"),
		"extra.xml":            []byte("<x/>"),
	})
	if err := CheckArchive(data, lim); !errors.Is(err, ErrUnsafeArchive) {
		t.Fatalf("CheckArchive() = %v, want ErrUnsafeArchive", err)
	}
}

func TestCheckArchiveRejectsTraversal(t *testing.T) {
	data := zipWith(t, map[string][]byte{
		"[Content_Types].xml":  []byte("<Types/>"),
		"ppt/presentation.xml": []byte("<p/>"),
		"../escape.txt":        []byte("x"),
	})
	if err := CheckArchive(data, DefaultZipLimits()); !errors.Is(err, ErrUnsafeArchive) {
		t.Fatalf("CheckArchive() = %v, want ErrUnsafeArchive", err)
	}
}

func TestCheckArchiveRejectsNonPresentation(t *testing.T) {
	data := zipWith(t, map[string][]byte{
		"hello.txt": []byte("not a deck"),
	})
	if err := CheckArchive(data, DefaultZipLimits()); !errors.Is(err, ErrUnsafeArchive) {
		t.Fatalf("CheckArchive() = %v, want ErrUnsafeArchive", err)
	}
}

func TestCheckArchiveRejectsGarbage(t *testing.T) {
	if err := CheckArchive([]byte("definitely not a zip"), DefaultZipLimits()); !errors.Is(err, ErrUnsafeArchive) {
		t.Fatalf("CheckArchive() = %v, want ErrUnsafeArchive", err)
	}
}
