package forum

import (
	"hibiki/models"
)

// DeleteComments removes the comments on a board whose numbers are in the
// set and whose deletion password matches. Unknown numbers and wrong
// passwords are silently skipped. With fileOnly the attachments are cleared
// but the comments stay. Deleting a thread root detaches its replies, which
// the follow-up orphan purge then removes.
func (s *Service) DeleteComments(url string, numbers []int, password string, fileOnly bool) error {
	board, err := s.requireBoard(url)
	if err != nil {
		return err
	}

	candidates, err := s.comments.ByNumbersAndPassword(board.ID, numbers, password)
	if err != nil {
		return err
	}

	for i := range candidates {
		c := &candidates[i]
		if err := s.removeFile(board.URL, c); err != nil {
			return err
		}
		if fileOnly {
			if err := s.comments.ClearFileFields(c.ID); err != nil {
				return err
			}
			continue
		}
		if err := s.comments.Delete(c.ID); err != nil {
			return err
		}
	}
	s.log.Infow("comments deleted", "board", board.URL, "requested", len(numbers), "matched", len(candidates), "file_only", fileOnly)

	if fileOnly {
		return nil
	}
	return s.PurgeOrphans()
}

// PurgeOrphans deletes detached replies (no parent, no last hit) together
// with their files.
func (s *Service) PurgeOrphans() error {
	orphans, err := s.comments.Orphans()
	if err != nil {
		return err
	}
	for i := range orphans {
		o := &orphans[i]
		if err := s.removeFile(o.Board.URL, o); err != nil {
			return err
		}
		if err := s.comments.Delete(o.ID); err != nil {
			return err
		}
	}
	if len(orphans) > 0 {
		s.log.Infow("orphaned replies purged", "count", len(orphans))
	}
	return nil
}

func (s *Service) removeFile(boardURL string, c *models.Comment) error {
	if c.File == nil {
		return nil
	}
	thumb := ""
	if c.FileThumb != nil {
		thumb = *c.FileThumb
	}
	return s.files.Remove(boardURL, *c.File, thumb)
}
