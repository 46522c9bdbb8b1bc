// Package forum implements the posting pipeline: validation, post creation
// with per-board numbering, bump tracking, board/thread pages and
// password-based deletion.
package forum

import (
	"time"

	"go.uber.org/zap"

	"hibiki/storage"
	"hibiki/store"
)

const (
	// Threads shown per board page.
	PageSize = 5
	// Latest replies shown under each thread on a board page.
	RepliesPreview = 5
)

// Clock abstracts time so delay windows and keep-alive cutoffs are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// FileStore is the slice of storage.Local the posting pipeline needs.
type FileStore interface {
	Save(boardURL string, upload *storage.Upload) (*storage.Saved, error)
	Remove(boardURL, file, thumb string) error
}

// Payload carries a submitted post before validation. Empty strings mean
// the poster left the field blank.
type Payload struct {
	Name     string
	Email    string
	Subject  string
	Comment  string
	Password string
	File     *storage.Upload
}

// Service wires the posting pipeline to its stores.
type Service struct {
	boards   *store.BoardStore
	comments *store.CommentStore
	files    FileStore
	clock    Clock
	log      *zap.SugaredLogger
}

func NewService(boards *store.BoardStore, comments *store.CommentStore, files FileStore, clock Clock, log *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		boards:   boards,
		comments: comments,
		files:    files,
		clock:    clock,
		log:      log,
	}
}
