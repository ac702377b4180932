package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "two" {
		t.Fatalf("got %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestUniquePathSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	first, err := UniquePath(dir, "data", ".csv")
	if err != nil || filepath.Base(first) != "data.csv" {
		t.Fatalf("first: %s", first)
	}
	_ = os.WriteFile(first, nil, 0o644)
	_ = os.WriteFile(filepath.Join(dir, "data__2.csv"), nil, 0o644)
	got, err := UniquePath(dir, "data", ".csv")
	if err != nil {
		t.Fatalf("unique path: %v", err)
	}
	if filepath.Base(got) != "data__3.csv" {
		t.Fatalf("expected data__3.csv, got %s", got)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Sheet 1":     "sheet-1",
		" Q3 - Sales": "q3-sales",
		"***":         "sheet",
	}
	for in, want := range cases {
		if got := Slug(in, "sheet"); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUniquePathReportsStatErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A path below a regular file fails with ENOTDIR, not ENOENT.
	if _, err := UniquePath(file, "data", ".csv"); err == nil {
		t.Fatalf("expected stat error")
	}
}
