package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hibiki/models"
)

// CommentStore is the repository for comments. Board-scoped queries take the
// board's primary key; callers resolve the URL through BoardStore first so
// joins stay at this boundary.
type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

const createAttempts = 5

// CreateNumbered inserts the comment with the next free number on the board.
// The counter increment and the insert run in one transaction: the UPDATE
// takes a row lock on the board until commit, so concurrent posts on the same
// board serialize and no two of them can observe the same counter value. A
// duplicate of (board_id, number_on_board) or a busy backend rolls the
// increment back and the whole sequence is retried.
func (s *CommentStore) CreateNumbered(boardID string, comment *models.Comment) error {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Board{}).
				Where("id = ?", boardID).
				Update("last_post_number", gorm.Expr("last_post_number + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}

			var board models.Board
			if err := tx.Select("id", "last_post_number").First(&board, "id = ?", boardID).Error; err != nil {
				return err
			}

			comment.BoardID = board.ID
			comment.NumberOnBoard = board.LastPostNumber
			return tx.Create(comment).Error
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		comment.ID = 0
		time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
	}
	return fmt.Errorf("assign post number on board %s: %w", boardID, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "Deadlock")
}

// ByNumber finds a comment of any kind by its board-local number.
// Returns (nil, nil) when absent.
func (s *CommentStore) ByNumber(boardID string, number int) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Where("board_id = ? AND number_on_board = ?", boardID, number).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ThreadWithReplies loads a thread root by number with all children ordered
// oldest first. Returns (nil, nil) when the number does not name a thread.
func (s *CommentStore) ThreadWithReplies(boardID string, number int) (*models.Comment, error) {
	var thread models.Comment
	err := s.db.
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, number_on_board ASC")
		}).
		Where("board_id = ? AND number_on_board = ? AND last_hit IS NOT NULL", boardID, number).
		First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ThreadsPage returns one page of thread roots ordered by last hit, newest
// bump first, children preloaded for omission counting.
func (s *CommentStore) ThreadsPage(boardID string, page, size int) ([]models.Comment, error) {
	var threads []models.Comment
	err := s.db.
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, number_on_board ASC")
		}).
		Where("board_id = ? AND last_hit IS NOT NULL", boardID).
		Order("last_hit DESC").
		Offset(page * size).
		Limit(size).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// ThreadsCount counts thread roots on a board.
func (s *CommentStore) ThreadsCount(boardID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).
		Where("board_id = ? AND last_hit IS NOT NULL", boardID).
		Count(&count).Error
	return count, err
}

// RepliesCount counts the children of a thread root.
func (s *CommentStore) RepliesCount(parentID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// LastThreadByIP returns the poster's most recent thread on any board, or
// (nil, nil) when the IP never started one. Feeds the thread delay window.
func (s *CommentStore) LastThreadByIP(ip string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Where("poster_ip = ? AND last_hit IS NOT NULL", ip).
		Order("created_at DESC").
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// LastCommentByIP returns the poster's most recent comment of any kind, or
// (nil, nil). Feeds the reply delay window.
func (s *CommentStore) LastCommentByIP(ip string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Where("poster_ip = ?", ip).
		Order("created_at DESC").
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// TouchLastHit advances a thread's last hit timestamp (a bump).
func (s *CommentStore) TouchLastHit(id uint, now time.Time) error {
	return s.db.Model(&models.Comment{}).
		Where("id = ?", id).
		Update("last_hit", now).Error
}

// ByNumbersAndPassword finds the deletion candidates: comments on the board
// whose numbers are in the set and whose deletion password matches verbatim.
func (s *CommentStore) ByNumbersAndPassword(boardID string, numbers []int, password string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.
		Where("board_id = ? AND number_on_board IN ? AND password = ?", boardID, numbers, password).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ByBoard returns every comment on a board; used when the board is removed.
func (s *CommentStore) ByBoard(boardID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.Where("board_id = ?", boardID).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteByBoard removes every comment row of a board. Files are the caller's
// concern.
func (s *CommentStore) DeleteByBoard(boardID string) error {
	return s.db.Where("board_id = ?", boardID).Delete(&models.Comment{}).Error
}

// ClearFileFields drops the attachment metadata from a comment record.
func (s *CommentStore) ClearFileFields(id uint) error {
	return s.db.Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"file": nil, "file_size": nil, "file_thumb": nil}).Error
}

// Delete removes a comment. Children of a deleted thread root are detached
// (parent set to NULL) rather than removed, leaving them with the orphan
// signature for the follow-up purge.
func (s *CommentStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
}

// Orphans finds detached replies: no parent and no last hit. The board is
// preloaded so callers can remove orphaned files from the right directory.
func (s *CommentStore) Orphans() ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("Board").
		Where("parent_id IS NULL AND last_hit IS NULL").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ThreadsNotHitSince returns thread roots whose last hit is older than the
// cutoff; the keep-alive cleaner feeds on this.
func (s *CommentStore) ThreadsNotHitSince(boardID string, cutoff time.Time) ([]models.Comment, error) {
	var threads []models.Comment
	err := s.db.
		Where("board_id = ? AND last_hit IS NOT NULL AND last_hit < ?", boardID, cutoff).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// CommentsCount counts all comments on a board.
func (s *CommentStore) CommentsCount(boardID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).Where("board_id = ?", boardID).Count(&count).Error
	return count, err
}

// FilesCount counts comments with an attachment on a board.
func (s *CommentStore) FilesCount(boardID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).
		Where("board_id = ? AND file IS NOT NULL", boardID).
		Count(&count).Error
	return count, err
}
