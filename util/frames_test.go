package util

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ppm", "a.ppm", "z.ppm", "B.ppm", "notes.txt", "frame.PPM", "ppm"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// A directory with a matching name is not a frame.
	if err := os.Mkdir(filepath.Join(dir, "dir.ppm"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListFrames(dir, ".ppm")
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}
	want := []string{"B.ppm", "a.ppm", "b.ppm", "z.ppm"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFrames() = %v, want %v", got, want)
	}
}

func TestListFrames_EmptyDirectory(t *testing.T) {
	got, err := ListFrames(t.TempDir(), ".ppm")
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListFrames() = %#v, want empty non-nil slice", got)
	}
}

func TestListFrames_SourceUnavailable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.ppm")
	os.WriteFile(file, []byte("x"), 0o644)

	tests := []struct {
		name string
		path string
	}{
		{name: "missing directory", path: filepath.Join(dir, "nope")},
		{name: "path is a file", path: file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ListFrames(tt.path, ".ppm")
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Errorf("ListFrames(%q) error = %v, want ErrSourceUnavailable", tt.path, err)
			}
		})
	}
}

func TestMatchesExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want bool
	}{
		{"a.ppm", ".ppm", true},
		{"a.ppm", "ppm", true},
		{".ppm", ".ppm", true},
		{"a.PPM", ".ppm", false},
		{"appm", ".ppm", false},
		{"a.pgm", ".ppm", false},
		{"anything", "", true},
	}
	for _, tt := range tests {
		if got := MatchesExtension(tt.name, tt.ext); got != tt.want {
			t.Errorf("MatchesExtension(%q, %q) = %v, want %v", tt.name, tt.ext, got, tt.want)
		}
	}
}

func TestCountFrames(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	os.Mkdir(sub, 0o755)
	for _, p := range []string{"a.ppm", "b.ppm", "c.txt", "sub/d.ppm", "sub/e.ppm"} {
		os.WriteFile(filepath.Join(dir, p), nil, 0o644)
	}

	flat, err := CountFrames(dir, ".ppm", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if flat != 2 {
		t.Errorf("CountFrames(non-recursive) = %d, want 2", flat)
	}

	deep, err := CountFrames(dir, ".ppm", true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if deep != 4 {
		t.Errorf("CountFrames(recursive) = %d, want 4", deep)
	}

	_, err = CountFrames(filepath.Join(dir, "missing"), ".ppm", true, nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("CountFrames(missing) error = %v, want ErrSourceUnavailable", err)
	}
}
