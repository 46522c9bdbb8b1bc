package forum

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hibiki/models"
	"hibiki/storage"
	"hibiki/store"
)

// fakeClock lets tests move through delay windows without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeFiles stands in for the disk store and records what got saved and removed.
type fakeFiles struct {
	mu      sync.Mutex
	seq     int
	saved   []string
	removed []string
}

func (f *fakeFiles) Save(boardURL string, upload *storage.Upload) (*storage.Saved, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	name := fmt.Sprintf("%d.dat", f.seq)
	f.saved = append(f.saved, boardURL+"/"+name)
	return &storage.Saved{Name: name, Size: upload.Size, Thumb: name}, nil
}

func (f *fakeFiles) Remove(boardURL, file, thumb string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, boardURL+"/"+file)
	return nil
}

func (f *fakeFiles) removedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.removed)
}

type testEnv struct {
	db       *gorm.DB
	boards   *store.BoardStore
	comments *store.CommentStore
	clock    *fakeClock
	files    *fakeFiles
	svc      *Service
}

// setupEnv builds the posting pipeline on a file-backed SQLite database so
// concurrent writers behave like they would against a real backend.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "forum.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Board{}, &models.BoardSettings{}, &models.Comment{}, &models.Staff{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	env := &testEnv{
		db:       db,
		boards:   store.NewBoardStore(db),
		comments: store.NewCommentStore(db),
		clock:    newFakeClock(),
		files:    &fakeFiles{},
	}
	env.svc = NewService(env.boards, env.comments, env.files, env.clock, nil)
	return env
}

// makeBoard creates a board with permissive settings; mutators tighten them.
func (env *testEnv) makeBoard(t *testing.T, url string, mutators ...func(*models.BoardSettings)) *models.Board {
	t.Helper()

	board := &models.Board{
		URL:  url,
		Name: "Test board /" + url + "/",
		Settings: models.BoardSettings{
			EnablePosting:       true,
			EnableFilesOnThread: true,
			EnableFilesOnReply:  true,
			EnableTripcode:      true,
			BumpLimit:           500,
			MaxThreadCount:      500,
			MaxFileSize:         1 << 20,
			MaxCommentLength:    5000,
		},
	}
	for _, m := range mutators {
		m(&board.Settings)
	}
	if err := env.boards.Create(board); err != nil {
		t.Fatalf("create board /%s/: %v", url, err)
	}
	return board
}

func payload(comment string) *Payload {
	return &Payload{Comment: comment, Password: "hunter2"}
}

func textUpload(name string, size int64) *storage.Upload {
	return &storage.Upload{
		Filename: name,
		Size:     size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(make([]byte, size))), nil
		},
	}
}

// mustThread creates a thread or fails the test.
func (env *testEnv) mustThread(t *testing.T, url string, p *Payload, ip string) *models.Comment {
	t.Helper()
	thread, err := env.svc.CreateThread(url, p, ip)
	if err != nil {
		t.Fatalf("create thread on /%s/: %v", url, err)
	}
	return thread
}

// mustReply creates a reply or fails the test.
func (env *testEnv) mustReply(t *testing.T, url string, threadNumber int, p *Payload, ip string) *models.Comment {
	t.Helper()
	reply, err := env.svc.CreateReply(url, threadNumber, p, ip)
	if err != nil {
		t.Fatalf("reply to thread %d on /%s/: %v", threadNumber, url, err)
	}
	return reply
}
