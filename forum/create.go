package forum

import (
	"html"
	"strings"

	"github.com/aquilax/tripcode"

	"hibiki/models"
	"hibiki/storage"
)

// CreateThread validates and stores a new thread, returning the created root.
func (s *Service) CreateThread(url string, p *Payload, ip string) (*models.Comment, error) {
	board, err := s.ValidateThread(url, p, ip)
	if err != nil {
		return nil, err
	}

	comment := s.buildComment(board, p, ip)
	now := s.clock.Now()
	comment.LastHit = &now

	if err := s.attachFile(board, comment, p.File); err != nil {
		return nil, err
	}
	if err := s.comments.CreateNumbered(board.ID, comment); err != nil {
		s.discardFile(board, comment)
		return nil, err
	}

	s.log.Infow("thread created", "board", board.URL, "number", comment.NumberOnBoard, "ip", ip)
	return comment, nil
}

// CreateReply validates and stores a reply, then decides whether the thread
// is bumped.
func (s *Service) CreateReply(url string, threadNumber int, p *Payload, ip string) (*models.Comment, error) {
	board, parent, err := s.ValidateReply(url, threadNumber, p, ip)
	if err != nil {
		return nil, err
	}

	comment := s.buildComment(board, p, ip)
	comment.ParentID = &parent.ID

	if err := s.attachFile(board, comment, p.File); err != nil {
		return nil, err
	}
	if err := s.comments.CreateNumbered(board.ID, comment); err != nil {
		s.discardFile(board, comment)
		return nil, err
	}

	if err := s.processLastHit(board, parent, p.Email); err != nil {
		return nil, err
	}

	s.log.Infow("reply created", "board", board.URL, "thread", parent.NumberOnBoard, "number", comment.NumberOnBoard, "ip", ip)
	return comment, nil
}

// buildComment normalizes the payload into a record: blank optional fields
// become NULL, the body is entity-encoded so markup renders literally, and
// the name may collapse into a tripcode.
func (s *Service) buildComment(board *models.Board, p *Payload, ip string) *models.Comment {
	comment := &models.Comment{
		PosterIP:  ip,
		Email:     nilIfEmpty(p.Email),
		Subject:   nilIfEmpty(p.Subject),
		Comment:   html.EscapeString(p.Comment),
		Password:  p.Password,
		CreatedAt: s.clock.Now(),
	}
	comment.Name, comment.Tripcode = s.nameOrTripcode(&board.Settings, p.Name)
	return comment
}

// nameOrTripcode applies the tripcode transform when the board allows it:
// everything after the first '#' is the secret, the public part is discarded.
func (s *Service) nameOrTripcode(settings *models.BoardSettings, name string) (*string, *string) {
	if settings.EnableTripcode {
		if _, secret, found := strings.Cut(name, "#"); found {
			code := tripcode.Tripcode(secret)
			return nil, &code
		}
	}
	return nilIfEmpty(name), nil
}

func (s *Service) attachFile(board *models.Board, comment *models.Comment, upload *storage.Upload) error {
	if upload == nil {
		return nil
	}
	saved, err := s.files.Save(board.URL, upload)
	if err != nil {
		return err
	}
	comment.File = &saved.Name
	comment.FileSize = &saved.Size
	comment.FileThumb = &saved.Thumb
	return nil
}

// discardFile undoes attachFile when the insert fails.
func (s *Service) discardFile(board *models.Board, comment *models.Comment) {
	if comment.File == nil {
		return
	}
	thumb := ""
	if comment.FileThumb != nil {
		thumb = *comment.FileThumb
	}
	if err := s.files.Remove(board.URL, *comment.File, thumb); err != nil {
		s.log.Warnw("remove stored file after failed insert", "board", board.URL, "file", *comment.File, "error", err)
	}
}

// processLastHit bumps the thread unless the reply is saged or the thread
// has reached its bump limit. The reply count includes the reply just made.
func (s *Service) processLastHit(board *models.Board, parent *models.Comment, email string) error {
	if strings.EqualFold(strings.TrimSpace(email), "sage") {
		s.log.Debugw("sage, thread not bumped", "board", board.URL, "thread", parent.NumberOnBoard)
		return nil
	}
	count, err := s.comments.RepliesCount(parent.ID)
	if err != nil {
		return err
	}
	if count > int64(board.Settings.BumpLimit) {
		s.log.Debugw("bump limit reached", "board", board.URL, "thread", parent.NumberOnBoard)
		return nil
	}
	return s.comments.TouchLastHit(parent.ID, s.clock.Now())
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
