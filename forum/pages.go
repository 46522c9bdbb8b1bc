package forum

import (
	"github.com/dustin/go-humanize"

	"hibiki/errs"
	"hibiki/models"
)

const displayTimeFormat = "Mon 02 Jan 2006 15:04:05"

// CommentItem is the display form of a comment: human-readable timestamp and
// file size, body carried as stored (already entity-encoded).
type CommentItem struct {
	NumberOnBoard int     `json:"number_on_board"`
	CreatedAt     string  `json:"created_at"`
	Name          *string `json:"name,omitempty"`
	Tripcode      *string `json:"tripcode,omitempty"`
	Email         *string `json:"email,omitempty"`
	Subject       *string `json:"subject,omitempty"`
	Comment       string  `json:"comment"`

	File      *string `json:"file,omitempty"`
	FileSize  string  `json:"file_size,omitempty"`
	FileThumb *string `json:"file_thumb,omitempty"`

	OmittedPosts int           `json:"omitted_posts"`
	OmittedFiles int           `json:"omitted_files"`
	Replies      []CommentItem `json:"replies"`
}

// BoardPage is one page of a board's thread listing.
type BoardPage struct {
	URL             string        `json:"url"`
	Name            string        `json:"name"`
	AdditionalRules string        `json:"additional_rules,omitempty"`
	CurrentPage     int           `json:"current_page"`
	MaxPageNumber   int           `json:"max_page_number"`
	Threads         []CommentItem `json:"threads"`
}

// ThreadPage is a full thread view: the root with every reply.
type ThreadPage struct {
	URL    string      `json:"url"`
	Name   string      `json:"name"`
	Thread CommentItem `json:"thread"`
}

// ListBoardPage returns one page of threads ordered by last hit, each with
// its newest replies and omission counters. Pages beyond the last one come
// back with an empty thread list; the caller decides what that means for
// page numbers above zero.
func (s *Service) ListBoardPage(url string, page int) (*BoardPage, error) {
	if page < 0 {
		return nil, errs.BadRequest("page number cannot be negative")
	}
	board, err := s.requireBoard(url)
	if err != nil {
		return nil, err
	}

	threads, err := s.comments.ThreadsPage(board.ID, page, PageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.comments.ThreadsCount(board.ID)
	if err != nil {
		return nil, err
	}

	items := make([]CommentItem, 0, len(threads))
	for i := range threads {
		items = append(items, newThreadItem(&threads[i], RepliesPreview))
	}

	return &BoardPage{
		URL:             board.URL,
		Name:            board.Name,
		AdditionalRules: board.Settings.AdditionalRules,
		CurrentPage:     page,
		MaxPageNumber:   maxPageNumber(total, PageSize),
		Threads:         items,
	}, nil
}

// GetThread returns the full thread view, replies untruncated.
func (s *Service) GetThread(url string, number int) (*ThreadPage, error) {
	board, err := s.requireBoard(url)
	if err != nil {
		return nil, err
	}
	thread, err := s.comments.ThreadWithReplies(board.ID, number)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, errs.NotFound("thread %d was not found on /%s/", number, board.URL)
	}
	return &ThreadPage{
		URL:    board.URL,
		Name:   board.Name,
		Thread: newThreadItem(thread, len(thread.Children)),
	}, nil
}

// newThreadItem renders a thread root showing at most previewCount of its
// newest replies and counts what got hidden.
func newThreadItem(thread *models.Comment, previewCount int) CommentItem {
	item := newCommentItem(thread)

	children := thread.Children
	shownFrom := len(children) - previewCount
	if shownFrom < 0 {
		shownFrom = 0
	}
	shown := children[shownFrom:]

	item.Replies = make([]CommentItem, 0, len(shown))
	for i := range shown {
		item.Replies = append(item.Replies, newCommentItem(&shown[i]))
	}
	item.OmittedPosts = len(children) - len(shown)
	item.OmittedFiles = countFiles(children) - countFiles(shown)
	return item
}

func newCommentItem(c *models.Comment) CommentItem {
	item := CommentItem{
		NumberOnBoard: c.NumberOnBoard,
		CreatedAt:     c.CreatedAt.Format(displayTimeFormat),
		Name:          c.Name,
		Tripcode:      c.Tripcode,
		Email:         c.Email,
		Subject:       c.Subject,
		Comment:       c.Comment,
		File:          c.File,
		FileThumb:     c.FileThumb,
		Replies:       []CommentItem{},
	}
	if c.FileSize != nil {
		item.FileSize = humanize.IBytes(uint64(*c.FileSize))
	}
	return item
}

func countFiles(comments []models.Comment) int {
	n := 0
	for i := range comments {
		if comments[i].HasFile() {
			n++
		}
	}
	return n
}

// maxPageNumber is the index of the last page, -1 for an empty board.
func maxPageNumber(total int64, size int) int {
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return pages - 1
}
