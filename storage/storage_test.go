package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func pngUpload(t *testing.T, name string, width, height int) *Upload {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()

	return &Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestSaveTallImageGetsResizedThumbnail(t *testing.T) {
	local := NewLocal(t.TempDir())

	saved, err := local.Save("b", pngUpload(t, "tall.png", 300, 600))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Name == "" || saved.Thumb == "" {
		t.Fatal("saved names are empty")
	}
	if filepath.Ext(saved.Name) != ".png" {
		t.Errorf("extension not preserved: %q", saved.Name)
	}

	thumb, err := imaging.Open(filepath.Join(local.root, "b", "thumb", saved.Thumb))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	if thumb.Bounds().Dy() != thumbnailHeight {
		t.Errorf("thumbnail height = %d, want %d", thumb.Bounds().Dy(), thumbnailHeight)
	}
	// Aspect ratio preserved: 300x600 -> 100x200
	if thumb.Bounds().Dx() != 100 {
		t.Errorf("thumbnail width = %d, want 100", thumb.Bounds().Dx())
	}
}

func TestSaveShortImageCopiesOriginal(t *testing.T) {
	local := NewLocal(t.TempDir())

	saved, err := local.Save("b", pngUpload(t, "short.png", 300, 150))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	src, err := os.ReadFile(filepath.Join(local.root, "b", "src", saved.Name))
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	thumb, err := os.ReadFile(filepath.Join(local.root, "b", "thumb", saved.Thumb))
	if err != nil {
		t.Fatalf("read thumbnail: %v", err)
	}
	if !bytes.Equal(src, thumb) {
		t.Error("short image thumbnail is not a byte copy of the source")
	}
	if saved.Size != int64(len(src)) {
		t.Errorf("recorded size %d, file is %d bytes", saved.Size, len(src))
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	local := NewLocal(t.TempDir())

	upload := &Upload{
		Filename: "not-an-image.png",
		Size:     4,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("text"))), nil
		},
	}
	if _, err := local.Save("b", upload); err == nil {
		t.Fatal("expected decode failure for non-image upload")
	}

	// The broken source must not be left behind
	entries, err := os.ReadDir(filepath.Join(local.root, "b", "src"))
	if err == nil && len(entries) != 0 {
		t.Errorf("%d files left in src after failed save", len(entries))
	}
}

func TestRemoveAndDirSize(t *testing.T) {
	local := NewLocal(t.TempDir())

	saved, err := local.Save("b", pngUpload(t, "a.png", 100, 100))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	size, err := local.DirSize("b")
	if err != nil {
		t.Fatalf("dir size: %v", err)
	}
	if size == 0 {
		t.Error("dir size is zero after a save")
	}

	if err := local.Remove("b", saved.Name, saved.Thumb); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing again is not an error
	if err := local.Remove("b", saved.Name, saved.Thumb); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	size, err = local.DirSize("b")
	if err != nil {
		t.Fatalf("dir size after remove: %v", err)
	}
	if size != 0 {
		t.Errorf("dir size = %d after removing everything", size)
	}

	// Boards without any upload yet report zero
	if size, err := local.DirSize("never-posted"); err != nil || size != 0 {
		t.Errorf("missing dir: size=%d err=%v", size, err)
	}
}

func TestRemoveBoardDirAndRename(t *testing.T) {
	local := NewLocal(t.TempDir())

	if _, err := local.Save("old", pngUpload(t, "a.png", 100, 100)); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := local.RenameBoardDir("old", "new"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := os.Stat(filepath.Join(local.root, "new", "src")); err != nil {
		t.Errorf("renamed dir missing: %v", err)
	}

	// Renaming a board that never had files is a no-op
	if err := local.RenameBoardDir("ghost", "phantom"); err != nil {
		t.Fatalf("rename missing dir: %v", err)
	}

	if err := local.RemoveBoardDir("new"); err != nil {
		t.Fatalf("remove board dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(local.root, "new")); !os.IsNotExist(err) {
		t.Error("board dir still present after removal")
	}
}
