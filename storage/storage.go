// Package storage keeps uploaded files on the local filesystem. Each board
// owns a directory under the public root with "src" for originals and
// "thumb" for thumbnails.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
)

// Thumbnails are scaled to this pixel height; smaller images are copied as is.
const thumbnailHeight = 200

// Upload is a file attached to a post, detached from the transport layer.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Saved describes a stored upload.
type Saved struct {
	Name  string
	Size  int64
	Thumb string
}

// Local stores files under a public root directory.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) srcDir(boardURL string) string {
	return filepath.Join(l.root, boardURL, "src")
}

func (l *Local) thumbDir(boardURL string) string {
	return filepath.Join(l.root, boardURL, "thumb")
}

// Save writes the upload into the board's src directory under a
// collision-resistant name and produces its thumbnail.
func (l *Local) Save(boardURL string, upload *Upload) (*Saved, error) {
	if err := os.MkdirAll(l.srcDir(boardURL), 0o755); err != nil {
		return nil, err
	}

	name := strconv.FormatInt(time.Now().UnixNano(), 10) + filepath.Ext(upload.Filename)
	srcPath := filepath.Join(l.srcDir(boardURL), name)

	size, err := l.writeUpload(srcPath, upload)
	if err != nil {
		return nil, err
	}

	if err := l.makeThumbnail(boardURL, srcPath, name); err != nil {
		_ = os.Remove(srcPath)
		return nil, err
	}

	return &Saved{Name: name, Size: size, Thumb: name}, nil
}

func (l *Local) writeUpload(dst string, upload *Upload) (int64, error) {
	in, err := upload.Open()
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	written, err := io.Copy(out, in)
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return written, nil
}

func (l *Local) makeThumbnail(boardURL, srcPath, name string) error {
	if err := os.MkdirAll(l.thumbDir(boardURL), 0o755); err != nil {
		return err
	}
	thumbPath := filepath.Join(l.thumbDir(boardURL), name)

	img, err := imaging.Open(srcPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", srcPath, err)
	}

	if img.Bounds().Dy() > thumbnailHeight {
		// Width 0 keeps the aspect ratio.
		thumb := imaging.Resize(img, 0, thumbnailHeight, imaging.Lanczos)
		return imaging.Save(thumb, thumbPath)
	}
	return copyFile(srcPath, thumbPath)
}

// Remove deletes a stored file and its thumbnail. Missing files are not an error.
func (l *Local) Remove(boardURL, file, thumb string) error {
	if file != "" {
		if err := removeIfExists(filepath.Join(l.srcDir(boardURL), filepath.Base(file))); err != nil {
			return err
		}
	}
	if thumb != "" {
		if err := removeIfExists(filepath.Join(l.thumbDir(boardURL), filepath.Base(thumb))); err != nil {
			return err
		}
	}
	return nil
}

// RemoveBoardDir deletes the whole directory of a board.
func (l *Local) RemoveBoardDir(boardURL string) error {
	return os.RemoveAll(filepath.Join(l.root, boardURL))
}

// RenameBoardDir moves a board's directory when its URL changes. A board
// that never received a file has no directory yet, which is fine.
func (l *Local) RenameBoardDir(oldURL, newURL string) error {
	err := os.Rename(filepath.Join(l.root, oldURL), filepath.Join(l.root, newURL))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// DirSize returns the total byte size of a board's directory.
func (l *Local) DirSize(boardURL string) (int64, error) {
	var total int64
	root := filepath.Join(l.root, boardURL)
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return total, err
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
