package store

import (
	"errors"

	"gorm.io/gorm"

	"hibiki/models"
)

// BoardStore is the repository for boards and their settings. Lookups that
// miss return (nil, nil) so callers can produce their own not-found errors.
type BoardStore struct {
	db *gorm.DB
}

func NewBoardStore(db *gorm.DB) *BoardStore {
	return &BoardStore{db: db}
}

// ByURL finds a board by its short URL, settings included.
func (s *BoardStore) ByURL(url string) (*models.Board, error) {
	var board models.Board
	err := s.db.Preload("Settings").Where("url = ?", url).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// ByID finds a board by primary key, settings included.
func (s *BoardStore) ByID(id string) (*models.Board, error) {
	var board models.Board
	err := s.db.Preload("Settings").Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// List returns one page of boards ordered by creation time, plus the total count.
func (s *BoardStore) List(page, size int) ([]models.Board, int64, error) {
	var total int64
	if err := s.db.Model(&models.Board{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boards []models.Board
	err := s.db.Preload("Settings").
		Order("created_at ASC").
		Offset(page * size).
		Limit(size).
		Find(&boards).Error
	if err != nil {
		return nil, 0, err
	}
	return boards, total, nil
}

// All returns every board with settings; used by the thread cleaner.
func (s *BoardStore) All() ([]models.Board, error) {
	var boards []models.Board
	if err := s.db.Preload("Settings").Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

func (s *BoardStore) Create(board *models.Board) error {
	return s.db.Create(board).Error
}

// Update saves the board row and its settings row.
func (s *BoardStore) Update(board *models.Board) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Board{}).
			Where("id = ?", board.ID).
			Updates(map[string]interface{}{"url": board.URL, "name": board.Name}).Error; err != nil {
			return err
		}
		return tx.Model(&models.BoardSettings{}).
			Where("board_id = ?", board.ID).
			Select("*").
			Omit("id", "board_id").
			Updates(board.Settings).Error
	})
}

// Delete removes the board and its settings. Comments must be removed first
// by the caller so their files can be cleared from disk.
func (s *BoardStore) Delete(board *models.Board) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardSettings{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Board{}, "id = ?", board.ID).Error
	})
}
