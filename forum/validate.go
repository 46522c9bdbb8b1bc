package forum

import (
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"hibiki/errs"
	"hibiki/models"
)

// ValidateThread runs the acceptance checks for a new thread in their fixed
// order and returns the resolved board. The first failed check wins.
func (s *Service) ValidateThread(url string, p *Payload, ip string) (*models.Board, error) {
	board, err := s.requireBoard(url)
	if err != nil {
		return nil, err
	}
	settings := &board.Settings

	if !settings.EnablePosting {
		return nil, errs.NotAllowed("posting is disabled on /%s/", board.URL)
	}

	if settings.DelayBetweenThreads > 0 {
		last, err := s.comments.LastThreadByIP(ip)
		if err != nil {
			return nil, err
		}
		if last != nil && s.within(last.CreatedAt, settings.DelayBetweenThreads) {
			return nil, errs.NotAllowed("the attempt to create threads is too frequent")
		}
	}

	// A maxThreadCount of 0 keeps the board permanently full.
	count, err := s.comments.ThreadsCount(board.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(settings.MaxThreadCount) {
		return nil, errs.NotAllowed("you cannot create a new thread on /%s/: the board is full", board.URL)
	}

	if err := s.checkContent(settings, p); err != nil {
		return nil, err
	}
	if err := s.checkFile(p, settings.EnableFilesOnThread, settings.StrictFileOnThread, settings.MaxFileSize); err != nil {
		return nil, err
	}
	return board, nil
}

// ValidateReply runs the acceptance checks for a reply and returns the board
// and the thread root being replied to.
func (s *Service) ValidateReply(url string, threadNumber int, p *Payload, ip string) (*models.Board, *models.Comment, error) {
	board, err := s.requireBoard(url)
	if err != nil {
		return nil, nil, err
	}
	settings := &board.Settings

	parent, err := s.requireThread(board, threadNumber)
	if err != nil {
		return nil, nil, err
	}

	if !settings.EnablePosting {
		return nil, nil, errs.NotAllowed("posting is disabled on /%s/", board.URL)
	}

	if settings.DelayBetweenReplies > 0 {
		last, err := s.comments.LastCommentByIP(ip)
		if err != nil {
			return nil, nil, err
		}
		if last != nil && s.within(last.CreatedAt, settings.DelayBetweenReplies) {
			return nil, nil, errs.NotAllowed("the attempt to post comments is too frequent")
		}
	}

	if err := s.checkContent(settings, p); err != nil {
		return nil, nil, err
	}
	if err := s.checkFile(p, settings.EnableFilesOnReply, settings.StrictFileOnReply, settings.MaxFileSize); err != nil {
		return nil, nil, err
	}
	return board, parent, nil
}

func (s *Service) requireBoard(url string) (*models.Board, error) {
	board, err := s.boards.ByURL(url)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, errs.NotFound("board /%s/ was not found", url)
	}
	return board, nil
}

func (s *Service) requireThread(board *models.Board, number int) (*models.Comment, error) {
	comment, err := s.comments.ByNumber(board.ID, number)
	if err != nil {
		return nil, err
	}
	if comment == nil || !comment.IsThread() {
		return nil, errs.NotFound("thread %d was not found on /%s/", number, board.URL)
	}
	return comment, nil
}

// within reports whether the reference time falls inside the delay window
// (milliseconds) ending now.
func (s *Service) within(ref time.Time, delayMs int) bool {
	return s.clock.Now().Sub(ref) < time.Duration(delayMs)*time.Millisecond
}

func (s *Service) checkContent(settings *models.BoardSettings, p *Payload) error {
	if settings.StrictAnonymousPosting && p.Name != "" {
		return errs.BadRequest("you should post without a name here")
	}
	if utf8.RuneCountInString(p.Comment) > settings.MaxCommentLength {
		return errs.BadRequest("your comment is longer than %d symbols", settings.MaxCommentLength)
	}
	return nil
}

func (s *Service) checkFile(p *Payload, filesEnabled, fileRequired bool, maxFileSize int64) error {
	if p.File != nil && !filesEnabled {
		return errs.BadRequest("you cannot upload files here")
	}
	if p.File == nil && fileRequired {
		return errs.BadRequest("please attach a file")
	}
	if p.File != nil && p.File.Size > maxFileSize {
		return errs.BadRequest("please upload a file smaller than %s", humanize.IBytes(uint64(maxFileSize)))
	}
	return nil
}
