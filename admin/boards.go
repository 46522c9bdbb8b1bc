// Package admin implements the staff-facing management operations: board
// lifecycle with posting rules, and staff accounts.
package admin

import (
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"hibiki/errs"
	"hibiki/models"
	"hibiki/store"
	"hibiki/utils"
)

// Boards per admin listing page.
const boardsPageSize = 10

// reservedBoardURLs cannot be taken by a board because they collide with
// site-level pages.
var reservedBoardURLs = map[string]struct{}{
	"menu":  {},
	"main":  {},
	"admin": {},
	"faq":   {},
	"rules": {},
}

// BoardFiles is the slice of storage.Local the board admin needs.
type BoardFiles interface {
	RemoveBoardDir(boardURL string) error
	RenameBoardDir(oldURL, newURL string) error
	DirSize(boardURL string) (int64, error)
}

// BoardInput is a board create/update request.
type BoardInput struct {
	URL      string              `json:"url" binding:"required,max=64"`
	Name     string              `json:"name" binding:"required,max=256"`
	Settings models.BoardSettings `json:"settings"`
}

// BoardSummary is one row of the admin board listing.
type BoardSummary struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	CommentsCount int64  `json:"comments_count"`
	FilesCount    int64  `json:"files_count"`
	DiskUsage     string `json:"disk_usage"`
}

// BoardList is one page of the admin board listing.
type BoardList struct {
	Boards []BoardSummary `json:"boards"`
	Total  int64          `json:"total"`
}

// BoardService manages board lifecycle for the admin panel.
type BoardService struct {
	boards   *store.BoardStore
	comments *store.CommentStore
	files    BoardFiles
	log      *zap.SugaredLogger
}

func NewBoardService(boards *store.BoardStore, comments *store.CommentStore, files BoardFiles, log *zap.SugaredLogger) *BoardService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &BoardService{boards: boards, comments: comments, files: files, log: log}
}

// Create makes a new board with its settings.
func (s *BoardService) Create(input *BoardInput) (*models.Board, error) {
	if err := s.checkURL(input.URL, ""); err != nil {
		return nil, err
	}

	board := &models.Board{
		URL:      input.URL,
		Name:     input.Name,
		Settings: input.Settings,
	}
	board.Settings.AdditionalRules = utils.SanitizeHTML(board.Settings.AdditionalRules)
	if board.Settings.MaxCommentLength < 1 {
		board.Settings.MaxCommentLength = 1
	}

	if err := s.boards.Create(board); err != nil {
		return nil, err
	}
	s.log.Infow("board created", "url", board.URL, "id", board.ID)
	return board, nil
}

// Update rewrites a board and its settings. A URL change moves the board's
// file directory along.
func (s *BoardService) Update(id string, input *BoardInput) (*models.Board, error) {
	board, err := s.requireBoard(id)
	if err != nil {
		return nil, err
	}

	oldURL := board.URL
	if input.URL != oldURL {
		if err := s.checkURL(input.URL, id); err != nil {
			return nil, err
		}
	}

	board.URL = input.URL
	board.Name = input.Name
	settingsID, boardID := board.Settings.ID, board.Settings.BoardID
	board.Settings = input.Settings
	board.Settings.ID, board.Settings.BoardID = settingsID, boardID
	board.Settings.AdditionalRules = utils.SanitizeHTML(board.Settings.AdditionalRules)
	if board.Settings.MaxCommentLength < 1 {
		board.Settings.MaxCommentLength = 1
	}

	if err := s.boards.Update(board); err != nil {
		return nil, err
	}
	if board.URL != oldURL {
		if err := s.files.RenameBoardDir(oldURL, board.URL); err != nil {
			s.log.Errorw("rename board directory", "from", oldURL, "to", board.URL, "error", err)
		}
	}
	s.log.Infow("board updated", "url", board.URL, "id", board.ID)
	return board, nil
}

// Delete removes a board with all its comments and files.
func (s *BoardService) Delete(id string) error {
	board, err := s.requireBoard(id)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteByBoard(board.ID); err != nil {
		return err
	}
	if err := s.files.RemoveBoardDir(board.URL); err != nil {
		return err
	}
	if err := s.boards.Delete(board); err != nil {
		return err
	}
	s.log.Infow("board deleted", "url", board.URL, "id", board.ID)
	return nil
}

// Get returns one board with settings.
func (s *BoardService) Get(id string) (*models.Board, error) {
	return s.requireBoard(id)
}

// List returns one page of boards with their content counters and disk usage.
func (s *BoardService) List(page int) (*BoardList, error) {
	if page < 0 {
		return nil, errs.BadRequest("page number cannot be negative")
	}
	boards, total, err := s.boards.List(page, boardsPageSize)
	if err != nil {
		return nil, err
	}

	summaries := make([]BoardSummary, 0, len(boards))
	for i := range boards {
		board := &boards[i]
		comments, err := s.comments.CommentsCount(board.ID)
		if err != nil {
			return nil, err
		}
		files, err := s.comments.FilesCount(board.ID)
		if err != nil {
			return nil, err
		}
		size, err := s.files.DirSize(board.URL)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, BoardSummary{
			ID:            board.ID,
			URL:           board.URL,
			Name:          board.Name,
			CommentsCount: comments,
			FilesCount:    files,
			DiskUsage:     humanize.IBytes(uint64(size)),
		})
	}
	return &BoardList{Boards: summaries, Total: total}, nil
}

func (s *BoardService) requireBoard(id string) (*models.Board, error) {
	board, err := s.boards.ByID(id)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, errs.NotFound("board %s was not found", id)
	}
	return board, nil
}

// checkURL rejects reserved URLs and duplicates. selfID skips the board
// being updated in the duplicate check.
func (s *BoardService) checkURL(url, selfID string) error {
	if _, reserved := reservedBoardURLs[url]; reserved {
		return errs.BadRequest("board URL /%s/ is reserved", url)
	}
	existing, err := s.boards.ByURL(url)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errs.Conflict("board /%s/ already exists", url)
	}
	return nil
}
